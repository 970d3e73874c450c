package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vodeneev/exerciser/internal/pkg/health/handlers"
)

// Deps are the collaborators the ops endpoints call into.
type Deps struct {
	Pass       handlers.PassRunner
	Brand      handlers.BrandRunner
	Logs       handlers.LogReader
	RunTimeout time.Duration
}

// NewRouter wires the ops endpoints.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Health endpoints
	router.GET("/ping", handlers.HandlePing)
	router.GET("/health", handlers.HandleHealth)

	// Metrics endpoint
	router.GET("/metrics", handlers.HandleMetrics())

	// Manual run endpoint
	if deps.Pass != nil && deps.Brand != nil {
		run := &handlers.RunHandler{Pass: deps.Pass, Brand: deps.Brand, Timeout: deps.RunTimeout}
		router.GET("/run", run.Handle)
		router.POST("/run", run.Handle)
	}

	if deps.Logs != nil {
		router.GET("/logs", handlers.HandleLogs(deps.Logs))
	}
	return router
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, addr string, service string, deps Deps) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Health server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server error", "service", service, "error", err)
		}
	}()
}
