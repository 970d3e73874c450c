package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/orchestrator"
	"github.com/Vodeneev/exerciser/internal/scraper/scheduler"
)

// PassRunner runs a guarded full pass.
type PassRunner interface {
	RunPass(ctx context.Context) (orchestrator.Stats, error)
}

// BrandRunner runs a single adapter.
type BrandRunner interface {
	RunOne(ctx context.Context, name string) (models.ScrapeResult, error)
}

// RunHandler triggers ingestion on demand.
// GET|POST /run?brand=CycleBar - run one brand
// GET|POST /run                - run a full pass unless one is in flight
type RunHandler struct {
	Pass    PassRunner
	Brand   BrandRunner
	Timeout time.Duration
}

func (h *RunHandler) Handle(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	// Runs outlive a dropped client connection.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	brand := strings.TrimSpace(c.Query("brand"))
	if brand != "" {
		h.runBrand(ctx, c, brand)
		return
	}

	slog.Info("Manual pass triggered")
	stats, err := h.Pass.RunPass(ctx)
	if errors.Is(err, scheduler.ErrPassRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RunHandler) runBrand(ctx context.Context, c *gin.Context, brand string) {
	slog.Info("Manual run triggered", "brand", brand)
	result, err := h.Brand.RunOne(ctx, brand)
	if errors.Is(err, integrations.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{
		"brand":       result.Brand,
		"status":      result.Status,
		"message":     result.Message,
		"class_count": result.ClassCount,
		"tier":        result.Tier,
		"duration":    result.Duration.String(),
	}
	if err != nil {
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
