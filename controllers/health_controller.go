package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifelongwellness/wellnessbackend/mailer"
	"github.com/lifelongwellness/wellnessbackend/utils"
)

// Health reports whether the SMTP transport is reachable.
// GET /api/health
func Health(transport mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := transport.Verify(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"error":   "Email service unavailable",
				"details": errorDetail(err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"service":     "email-server",
			"environment": utils.EnvDefault("APP_ENV", "development"),
		})
	}
}
