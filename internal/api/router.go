package api

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/blobstore"
	"github.com/jengzang/lightcurve-viewer-go/internal/config"
	"github.com/jengzang/lightcurve-viewer-go/internal/handler"
	"github.com/jengzang/lightcurve-viewer-go/internal/middleware"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/internal/session"
)

//go:embed static/*
var embeddedStatic embed.FS

// Deps 路由依赖
type Deps struct {
	Sources     *service.SourceService
	Lightcurves *service.LightcurveService
	Cutouts     *service.CutoutService
	Auth        *service.AuthService
	Blobs       *blobstore.Store
	Sessions    *session.Manager
	// CutoutLimiter may be nil to disable rate limiting
	CutoutLimiter *middleware.RateLimiter
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic("static assets missing: " + err.Error())
	}
	r.GET("/", func(c *gin.Context) {
		data, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "index missing")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
	r.StaticFS("/static", http.FS(staticFS))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "Lightcurve viewer is running",
			"sessions": deps.Sessions.Len(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	sourceHandler := handler.NewSourceHandler(deps.Sources)
	lightcurveHandler := handler.NewLightcurveHandler(deps.Lightcurves)
	cutoutHandler := handler.NewCutoutHandler(deps.Cutouts, deps.Blobs)
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	authHandler := handler.NewAuthHandler(deps.Auth)

	// API 路由组
	api := r.Group("/api/v1")
	{
		sources := api.Group("/sources")
		{
			sources.GET("", sourceHandler.List)
			sources.GET("/:id/summary", sourceHandler.Summary)
			sources.GET("/:id/nearby", sourceHandler.Nearby)
			sources.GET("/:id/skyview", sourceHandler.SkyView)
		}

		lightcurves := api.Group("/lightcurves")
		{
			lightcurves.GET("/:id", lightcurveHandler.Get)
			lightcurves.GET("/:id/badges", lightcurveHandler.Badges)
			lightcurves.GET("/:id/variability", lightcurveHandler.Variability)
			lightcurves.GET("/:id/table", lightcurveHandler.Table)
			lightcurves.GET("/:id/series", lightcurveHandler.Series)
			lightcurves.GET("/:id/plot.png", lightcurveHandler.Plot)
			lightcurves.GET("/:id/download", lightcurveHandler.Download)
			lightcurves.GET("/:id/session", sessionHandler.Connect)
		}

		cutouts := api.Group("/cutouts")
		if deps.CutoutLimiter != nil {
			cutouts.Use(middleware.RateLimit(deps.CutoutLimiter))
		}
		{
			cutouts.GET("/:pointId", cutoutHandler.Get)
		}

		api.GET("/search/cone", sourceHandler.Cone)
		api.GET("/feed", sourceHandler.Feed)
		api.GET("/blobs/:token", cutoutHandler.Blob)
		api.GET("/sessions", sessionHandler.Stats)
		api.GET("/auth/link", authHandler.Link)
	}

	return r
}
