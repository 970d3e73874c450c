package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlePing handles /ping endpoint
func HandlePing(c *gin.Context) {
	c.String(http.StatusOK, "pong\n")
}

// HandleHealth handles /health endpoint
func HandleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}
