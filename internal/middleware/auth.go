package middleware

import (
	"context"
	"net/http"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
)

type UserLoader interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser resolves the session's user and stores it in the context.
// Requests without a valid session continue anonymously.
func LoadUser(users UserLoader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserKey).(uint)
		if ok && userID != 0 {
			user, err := users.Get(c.Request.Context(), userID)
			switch {
			case err == nil:
				c.Set(CheckUserKey, user)
			case apperr.CodeOf(err) == apperr.CodeNotFound:
				session.Delete(SessionUserKey)
				if err := session.Save(); err != nil {
					log.Warn("clear stale session failed", zap.Error(err))
				}
			default:
				log.Error("load session user failed", zap.Uint("user_id", userID), zap.Error(err))
			}
		}
		c.Next()
	}
}

// AuthRequired rejects anonymous requests with 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    apperr.CodeUnauthenticated,
					"message": "authentication required",
				},
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the signed-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// ViewerID is the signed-in user's ID, 0 for anonymous requests.
func ViewerID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
