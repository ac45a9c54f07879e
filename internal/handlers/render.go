package handlers

import (
	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/gin-gonic/gin"
)

// render wraps c.HTML and passes the current user and pending flashes to every template.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u := middleware.CurrentUser(c); u != nil {
		data["CurrentUser"] = u
		data["IsEmployee"] = u.HasRole(models.RoleEmployee)
		data["IsFarmer"] = u.HasRole(models.RoleFarmer)
	}
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = middleware.Flashes(c)
	}

	c.HTML(status, tmpl, data)
}
