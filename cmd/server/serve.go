package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/lightcurve-viewer-go/internal/api"
	"github.com/jengzang/lightcurve-viewer-go/internal/blobstore"
	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/config"
	"github.com/jengzang/lightcurve-viewer-go/internal/database"
	"github.com/jengzang/lightcurve-viewer-go/internal/middleware"
	"github.com/jengzang/lightcurve-viewer-go/internal/repository"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !strings.Contains(cfg.Port, ":") {
			cfg.Port = ":" + cfg.Port
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen address (overrides config)")
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.MaxMemory > 0 {
		debug.SetMemoryLimit(cfg.MaxMemory)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		return err
	}
	defer database.Close()

	client := catalog.NewClient(catalog.Config{BaseURL: cfg.ServiceURL, Timeout: cfg.FetchTimeout})
	cache := repository.NewCacheRepository(database.GetDB(), cfg.CacheTTL)
	blobs := blobstore.New("/api/v1/blobs/")

	lightcurves := service.NewLightcurveService(client, cache)
	cutouts := service.NewCutoutService(client, cache)

	var limiter *middleware.RateLimiter
	if cfg.CutoutRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.CutoutRateLimit, time.Minute)
		defer limiter.Stop()
	}

	// 初始化路由
	sessions := session.NewManager(session.Options{
		Loader:          lightcurves,
		Fetcher:         cutouts,
		Blobs:           blobs,
		CutoutURLPrefix: "/api/v1/cutouts/",
		FetchTimeout:    cfg.FetchTimeout,
	})

	router := api.SetupRouter(cfg, api.Deps{
		Sources:       service.NewSourceService(client),
		Lightcurves:   lightcurves,
		Cutouts:       cutouts,
		Auth:          service.NewAuthService(cfg.JWTSecret, cfg.LoginURL, cfg.LogoutURL),
		Blobs:         blobs,
		Sessions:      sessions,
		CutoutLimiter: limiter,
	})

	go housekeeping(ctx, cfg, blobs, sessions, cache)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (catalog %s)", cfg.Port, client.BaseURL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// housekeeping drops stale tooltip images and expired cache rows. Images still
// owned by an open session are kept.
func housekeeping(ctx context.Context, cfg *config.Config, blobs *blobstore.Store, sessions *session.Manager, cache *repository.CacheRepository) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := blobs.Sweep(cfg.BlobMaxAge, sessions.Live); n > 0 {
				log.Printf("[Housekeeping] swept %d stale images", n)
			}
			n, err := cache.Purge()
			if err != nil {
				log.Printf("[Housekeeping] cache purge failed: %v", err)
			} else if n > 0 {
				log.Printf("[Housekeeping] purged %d expired cache rows", n)
			}
		}
	}
}
