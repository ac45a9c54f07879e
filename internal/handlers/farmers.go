package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/gin-gonic/gin"
)

type newFarmerForm struct {
	FullName        string `form:"full_name" binding:"required,max=100"`
	Email           string `form:"email" binding:"required,email,max=256"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

func (h *Handler) ShowNewFarmer(c *gin.Context) {
	renderNewFarmer(c, http.StatusOK, newFarmerForm{}, nil)
}

func (h *Handler) CreateFarmer(c *gin.Context) {
	var form newFarmerForm
	if err := c.ShouldBind(&form); err != nil {
		renderNewFarmer(c, http.StatusBadRequest, form, bindingMessages(err))
		return
	}

	farmer, err := h.users.CreateFarmer(c.Request.Context(), services.CreateFarmerInput{
		FullName: form.FullName,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if messages, ok := serviceMessages(err); ok && !errors.Is(err, services.ErrPersistence) {
			renderNewFarmer(c, http.StatusBadRequest, form, messages)
			return
		}
		h.log.Error().Err(err).Msg("create farmer")
		renderNewFarmer(c, http.StatusInternalServerError, form, []string{"The farmer account could not be saved. Please try again."})
		return
	}

	employee := middleware.CurrentUser(c)
	h.recordAudit(c.Request.Context(), employee.ID, "user", farmer.ID, "create",
		fmt.Sprintf("Created farmer %s", farmer.FullName))

	middleware.AddFlash(c, "Farmer account created successfully!")
	c.Redirect(http.StatusFound, "/employee")
}

func renderNewFarmer(c *gin.Context, status int, form newFarmerForm, errs []string) {
	render(c, status, "farmer_new.html", gin.H{
		"Title":    "Add farmer",
		"Errors":   errs,
		"FullName": form.FullName,
		"Email":    form.Email,
	})
}
