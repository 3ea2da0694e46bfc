package middleware

import (
	"time"

	"regwizard/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request id and a scoped logger to the context and
// logs each request once it completes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		reqLogger := logger.With(zap.String("request_id", requestID))
		c.Set(utils.RequestIDKey, requestID)
		c.Set(utils.LoggerKey, reqLogger)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		reqLogger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
