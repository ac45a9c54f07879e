package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/gin-gonic/gin"
)

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			challenge(c)
			return
		}
		c.Next()
	}
}

func RequireRole(role models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		err := services.Authorize(user, role)
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			challenge(c)
			return
		case errors.Is(err, services.ErrForbidden):
			c.HTML(http.StatusForbidden, "access_denied.html", gin.H{
				"Title":       "Access denied",
				"CurrentUser": user,
				"IsEmployee":  user.HasRole(models.RoleEmployee),
				"IsFarmer":    user.HasRole(models.RoleFarmer),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// challenge sends browsers to the login page with a return URL; JSON clients get 401.
func challenge(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrUnauthenticated.Error()})
		return
	}
	target := "/login?return_url=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// IsLocalURL accepts only same-origin absolute paths such as "/farmer/products".
func IsLocalURL(raw string) bool {
	if raw == "" || raw[0] != '/' {
		return false
	}
	if len(raw) > 1 && (raw[1] == '/' || raw[1] == '\\') {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
