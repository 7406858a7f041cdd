package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/utils"
)

// RequestLogger creates a middleware that logs each request with timing
// and source client info. Webhook deliveries are machine-to-machine, so
// the parsed user agent mostly identifies the provider's sender.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		client := utils.ParseUserAgent(c.Request.UserAgent())

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
			"client":  client.Browser,
			"is_bot":  client.IsBot,
		})

		if c.Writer.Status() >= 500 {
			entry.Error("Request failed")
			return
		}
		entry.Info("Request handled")
	}
}
