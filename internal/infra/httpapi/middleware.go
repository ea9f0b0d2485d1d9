package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/telemetry"
)

const unmatchedRoute = "unmatched"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, id := telemetry.EnsureRequestID(c.Request.Context(), c.GetHeader(telemetry.RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(telemetry.RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger, metrics domain.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		metrics.ObserveHTTPRequest(route, status)

		fields := telemetry.HTTPFields(c.Request.Method, route, status, c.ClientIP(), time.Since(start))
		reqLogger := telemetry.LoggerWithRequest(c.Request.Context(), logger)
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Warn("request failed", fields...)
		default:
			reqLogger.Debug("request served", fields...)
		}
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		telemetry.LoggerWithRequest(c.Request.Context(), logger).Error("handler panic", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
			Detail: "Internal server error",
			Code:   string(domain.CodeInternal),
		})
	})
}
