package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arix/server/internal/domain/identity"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	apperrors "github.com/arix/server/internal/utils/errors"
	"github.com/arix/server/internal/utils/logger"
	"github.com/arix/server/internal/utils/response"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// IdentityKey is the context key for the resolved identity.
	IdentityKey = "identity"
)

// Auth returns a middleware that resolves the bearer token to an identity.
// Requests without a resolvable identity never reach the handler.
func Auth(resolver inbound.IdentityDomain, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			response.Abort(c, apperrors.Unauthorized(""))
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrIdentityUnavailable) {
				log.Error("Identity resolution unavailable",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
				response.Abort(c, apperrors.IdentityUnavailable("", err))
				return
			}
			response.Abort(c, apperrors.Unauthorized("invalid or expired session"))
			return
		}

		c.Set(IdentityKey, id)
		c.Set(UserIDKey, id.UserID)

		ctx := c.Request.Context()
		reqLog := logger.FromContext(ctx, log).With(zap.String("user_id", id.UserID))
		c.Request = c.Request.WithContext(logger.ContextWithLogger(ctx, reqLog))

		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}

	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	}

	return ""
}

// GetIdentity returns the resolved identity, or nil outside authenticated routes.
func GetIdentity(c *gin.Context) *model.Identity {
	if val, exists := c.Get(IdentityKey); exists {
		if id, ok := val.(*model.Identity); ok {
			return id
		}
	}
	return nil
}

// GetUserID returns the user ID from context.
// Returns an empty string if not found.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
