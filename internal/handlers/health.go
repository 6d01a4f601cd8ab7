package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["postgres"] = err.Error()
	} else {
		checks["postgres"] = "ok"
	}

	if err := h.cache.Ping(ctx).Err(); err != nil {
		status = http.StatusServiceUnavailable
		checks["redis"] = err.Error()
	} else {
		checks["redis"] = "ok"
	}

	c.JSON(status, gin.H{
		"status": http.StatusText(status),
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
	})
}
