package middleware

import (
	"context"

	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const CurrentUserKey = "CurrentUser"

// UserResolver maps a session principal to a live account.
type UserResolver interface {
	GetCurrentUser(ctx context.Context, principal string) (*models.User, error)
}

func InjectUser(s *Sessions, users UserResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal := s.principal(c); principal != "" {
			user, err := users.GetCurrentUser(c.Request.Context(), principal)
			switch {
			case err != nil:
				log.Error().Err(err).Str("user_id", principal).Msg("resolve session user")
			case user == nil:
				_ = s.SignOut(c)
			default:
				c.Set(CurrentUserKey, user)
			}
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
