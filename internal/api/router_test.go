package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/blobstore"
	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/config"
	"github.com/jengzang/lightcurve-viewer-go/internal/middleware"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/internal/session"
)

func newRouter(t *testing.T, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	client := catalog.NewClient(catalog.Config{BaseURL: upstream.URL})
	blobs := blobstore.New("/api/v1/blobs/")
	lightcurves := service.NewLightcurveService(client, nil)
	cutouts := service.NewCutoutService(client, nil)

	return SetupRouter(&cfg, Deps{
		Sources:     service.NewSourceService(client),
		Lightcurves: lightcurves,
		Cutouts:     cutouts,
		Auth:        service.NewAuthService(cfg.JWTSecret, cfg.LoginURL, cfg.LogoutURL),
		Blobs:       blobs,
		Sessions: session.NewManager(session.Options{
			Loader:  lightcurves,
			Fetcher: cutouts,
			Blobs:   blobs,
		}),
		CutoutLimiter: limiter,
	})
}

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newRouter(t, nil)

	w := serve(r, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["sessions"] != float64(0) {
		t.Errorf("health = %v", body)
	}
}

func TestIndexPage(t *testing.T) {
	r := newRouter(t, nil)

	w := serve(r, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "/session?hideFlagged=") {
		t.Error("index does not open a plot session")
	}
}

func TestRoutesRegistered(t *testing.T) {
	r := newRouter(t, nil)

	want := []string{
		"/api/v1/sources",
		"/api/v1/search/cone",
		"/api/v1/feed",
		"/api/v1/sources/:id/summary",
		"/api/v1/sources/:id/nearby",
		"/api/v1/sources/:id/skyview",
		"/api/v1/lightcurves/:id",
		"/api/v1/lightcurves/:id/badges",
		"/api/v1/lightcurves/:id/variability",
		"/api/v1/lightcurves/:id/table",
		"/api/v1/lightcurves/:id/series",
		"/api/v1/lightcurves/:id/plot.png",
		"/api/v1/lightcurves/:id/download",
		"/api/v1/lightcurves/:id/session",
		"/api/v1/cutouts/:pointId",
		"/api/v1/blobs/:token",
		"/api/v1/sessions",
		"/api/v1/auth/link",
	}
	have := make(map[string]bool)
	for _, route := range r.Routes() {
		have[route.Method+" "+route.Path] = true
	}
	for _, path := range want {
		if !have["GET "+path] {
			t.Errorf("route GET %s missing", path)
		}
	}
}

func TestCutoutRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	r := newRouter(t, limiter)

	for i := 0; i < 2; i++ {
		// the catalog stub knows no cutouts
		if w := serve(r, http.MethodGet, "/api/v1/cutouts/1"); w.Code != http.StatusNotFound {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	if w := serve(r, http.MethodGet, "/api/v1/cutouts/1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}

	// other routes are not limited
	if w := serve(r, http.MethodGet, "/api/v1/sessions"); w.Code != http.StatusOK {
		t.Errorf("sessions status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sources", nil)
	req.Header.Set("Origin", "http://example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("allow origin header missing")
	}
}
