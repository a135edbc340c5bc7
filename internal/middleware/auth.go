package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// Authenticator resolves credentials to users.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*models.User, error)
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth authenticates the request by "Authorization: Token <key>", falling back to the session
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, key, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, constants.AuthHeaderScheme) || strings.TrimSpace(key) == "" {
				apierrors.Unauthorized(c, "Invalid token header")
				return
			}

			user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(key))
			if err != nil {
				if errors.Is(err, services.ErrInvalidToken) {
					apierrors.Unauthorized(c, "Invalid token")
					return
				}
				apierrors.InternalError(c, "Failed to authenticate")
				return
			}

			setUser(c, user)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID, ok := session.Get(constants.ContextKeyUserID).(uint64)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		user, err := auth.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				// stale session
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "")
				return
			}
			apierrors.InternalError(c, "Failed to authenticate")
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireStaff only lets staff users through. Must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !user.IsStaff {
			apierrors.Forbidden(c, "")
			return
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUser, user)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
