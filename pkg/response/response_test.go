package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		send     func(c *gin.Context)
		wantCode int
		wantBody Response
	}{
		{"success", func(c *gin.Context) { Success(c, "ok") }, http.StatusOK, Response{Code: 0, Message: "success", Data: "ok"}},
		{"bad request", func(c *gin.Context) { BadRequest(c, "bad") }, http.StatusBadRequest, Response{Code: 400, Message: "bad"}},
		{"not found", func(c *gin.Context) { NotFound(c, "gone") }, http.StatusNotFound, Response{Code: 404, Message: "gone"}},
		{"too many", func(c *gin.Context) { TooManyRequests(c, "slow") }, http.StatusTooManyRequests, Response{Code: 429, Message: "slow"}},
		{"internal", func(c *gin.Context) { InternalError(c, "boom") }, http.StatusInternalServerError, Response{Code: 500, Message: "boom"}},
		{"bad gateway", func(c *gin.Context) { BadGateway(c, "upstream") }, http.StatusBadGateway, Response{Code: 502, Message: "upstream"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.send(c)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var got Response
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.wantBody {
				t.Errorf("body = %+v, want %+v", got, tt.wantBody)
			}
		})
	}
}
