package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

const (
	GinContextKeyUser      = "user"
	GinContextKeyUserID    = "userID"
	GinContextKeyRequestID = "requestID"
)

// AuthMiddleware resolves the bearer token to a user. Requests without a valid
// token are rejected before any handler runs.
func AuthMiddleware(identity service.IdentityProvider, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Error(apperror.NewUnauthorized("Authorization header is required", nil))
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == authHeader || tokenString == "" {
			c.Error(apperror.NewUnauthorized("Invalid token format", nil))
			c.Abort()
			return
		}

		u, err := identity.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			log.Debug("Token rejected", zap.Error(err))
			c.Error(apperror.NewUnauthorized("Invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(GinContextKeyUser, u)
		c.Set(GinContextKeyUserID, u.ID)
		c.Next()
	}
}

func GetUserFromGinContext(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(GinContextKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok && u != nil
}

func GetUserIDFromGinContext(c *gin.Context) (string, bool) {
	u, ok := GetUserFromGinContext(c)
	if !ok || u.ID == "" {
		return "", false
	}
	return u.ID, true
}
