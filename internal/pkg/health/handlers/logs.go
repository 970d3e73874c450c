package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

const maxLogsLimit = 500

// LogReader lists recent scrape log rows.
type LogReader interface {
	RecentScrapeLogs(ctx context.Context, brand string, limit int) ([]models.ScrapeLog, error)
}

// HandleLogs handles GET /logs?brand=&limit=
func HandleLogs(reader LogReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxLogsLimit)
		}

		logs, err := reader.RecentScrapeLogs(c.Request.Context(), c.Query("brand"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
	}
}
