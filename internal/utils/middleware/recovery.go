package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/arix/server/internal/utils/errors"
	"github.com/arix/server/internal/utils/logger"
	"github.com/arix/server/internal/utils/response"
)

// Recovery turns a handler panic into the generic 500 envelope. The panic value
// is logged, never sent to the client.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// Prefer the request logger so the entry carries request_id.
			logger.FromContext(c.Request.Context(), log).Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.String("user_id", GetUserID(c)),
				zap.ByteString("stack", debug.Stack()),
			)
			response.Abort(c, apperrors.Internal("panic", fmt.Errorf("%v", rec)))
		}()
		c.Next()
	}
}
