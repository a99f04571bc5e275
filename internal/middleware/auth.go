package middleware

import (
	"net/http"

	"otpdesk/internal/models"
	"otpdesk/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionUserKey is the session value holding the authenticated user id.
const SessionUserKey = "user_id"

// identityKey is the gin context key for the resolved user.
const identityKey = "current_user"

// Authenticate resolves the cookie session into a user record and stores
// it in the request context. Unauthenticated or stale sessions (the user
// was deleted) are redirected to the login page.
func Authenticate(users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, ok := session.Get(SessionUserKey).(int64)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		user, err := users.GetByID(id)
		if err != nil {
			logger.Debug("Session refers to no current user, clearing it", zap.Int64("user_id", id), zap.Error(err))
			session.Delete(SessionUserKey)
			_ = session.Save()
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// RequireRole rejects the request unless the resolved user carries the
// given role. The role comes from the freshly loaded record, not from
// anything the client sent.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			c.String(http.StatusForbidden, "Access Denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
