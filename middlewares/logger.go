package middlewares

import (
	"time"

	"blogapp/global"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger writes one logrus entry per request.
func Logger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		ctx.Next()

		fields := logrus.Fields{
			"method":   ctx.Request.Method,
			"path":     path,
			"status":   ctx.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIP": ctx.ClientIP(),
		}
		if id, ok := CurrentIdentity(ctx); ok {
			fields["user"] = id.UserID
		}
		entry := global.Logger.WithFields(fields)

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
