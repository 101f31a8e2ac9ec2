package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/events"
	"github.com/actionsum/activitymon/internal/logging"
)

// RequestIDHeader carries the request id back to the caller.
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, stores a request-scoped logger
// in the request context and logs the outcome.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := logging.WithLogger(c.Request.Context(), logger)
		ctx = logging.WithFields(ctx, zap.String("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)
		reqLogger := logging.FromContext(ctx)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			reqLogger.Warn("request failed", fields...)
			return
		}
		reqLogger.Debug("request", fields...)
	}
}

// Recovery turns handler panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context()).Error("panic in handler", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	})
}

// LocalOnly refuses requests made by pages from other origins. Browsers let
// any site reach localhost, so a foreign Origin gets 403, and a POST must
// carry a JSON body type, which a page cannot send without a preflight.
func LocalOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); !events.IsLocalOrigin(origin) {
			logging.FromContext(c.Request.Context()).Warn("refused cross-origin request", zap.String("origin", origin))
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "cross-origin requests are not allowed"})
			return
		}
		if c.Request.Method == http.MethodPost && c.ContentType() != binding.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, errorResponse{Error: "content type must be application/json"})
			return
		}
		c.Next()
	}
}
