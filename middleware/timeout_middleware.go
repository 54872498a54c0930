package middleware

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifelongwellness/wellnessbackend/utils"
)

// RequestTimeout installs an end-to-end deadline on the request
// context so retry sleeps and in-flight sends abort instead of hanging
// the caller. Default 30 s, overridable via REQUEST_TIMEOUT_SECONDS.
func RequestTimeout() gin.HandlerFunc {
	seconds := utils.ParseIntDefault(os.Getenv("REQUEST_TIMEOUT_SECONDS"), 30)
	if seconds < 1 {
		seconds = 30
	}
	budget := time.Duration(seconds) * time.Second

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), budget)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
