package handlers

import (
	"net/http"

	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Index(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		c.Redirect(http.StatusFound, dashboardFor(user))
		return
	}
	render(c, http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
}

func (h *Handler) EmployeeDashboard(c *gin.Context) {
	render(c, http.StatusOK, "employee_dashboard.html", gin.H{
		"Title":      "Employee dashboard",
		"Categories": h.products.GetDistinctCategories(c.Request.Context()),
	})
}

func (h *Handler) FarmerDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	products := h.products.GetProductsByFarmer(c.Request.Context(), user.ID)
	render(c, http.StatusOK, "farmer_dashboard.html", gin.H{
		"Title":        "Farmer dashboard",
		"ProductCount": len(products),
	})
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
