package handlers

import (
	"net/http"

	"github.com/agrienergy/agri-produce/internal/logger"
	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/gin-gonic/gin"
)

type loginForm struct {
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
	ReturnURL  string `form:"return_url"`
}

func (h *Handler) ShowLogin(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		c.Redirect(http.StatusFound, dashboardFor(user))
		return
	}
	renderLogin(c, http.StatusOK, loginForm{ReturnURL: c.Query("return_url")})
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		renderLogin(c, http.StatusBadRequest, form, bindingMessages(err)...)
		return
	}

	result, user, err := h.accounts.Login(c.Request.Context(), form.Email, form.Password, form.RememberMe)
	if err != nil {
		h.log.Error().Err(err).Str("email", logger.MaskEmail(form.Email)).Msg("login failed")
		renderLogin(c, http.StatusInternalServerError, form, "Something went wrong. Please try again.")
		return
	}

	switch result {
	case services.LoginLockedOut:
		h.recordAudit(c.Request.Context(), "", "account", logger.MaskEmail(form.Email), "lockout", services.ErrLockedOut.Error())
		renderLogin(c, http.StatusLocked, form, "This account has been locked out, please try again later.")
		return
	case services.LoginInvalidCredentials:
		renderLogin(c, http.StatusBadRequest, form, "Invalid login attempt.")
		return
	}

	if err := h.sessions.SignIn(c, user, form.RememberMe); err != nil {
		h.log.Error().Err(err).Msg("save session")
		renderLogin(c, http.StatusInternalServerError, form, "Something went wrong. Please try again.")
		return
	}
	h.recordAudit(c.Request.Context(), user.ID, "account", user.ID, "login", "Signed in")

	target := dashboardFor(user)
	if middleware.IsLocalURL(form.ReturnURL) {
		target = form.ReturnURL
	}
	c.Redirect(http.StatusFound, target)
}

func renderLogin(c *gin.Context, status int, form loginForm, errs ...string) {
	render(c, status, "login.html", gin.H{
		"Title":      "Log in",
		"Errors":     errs,
		"Email":      form.Email,
		"RememberMe": form.RememberMe,
		"ReturnURL":  form.ReturnURL,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		h.log.Info().Str("email", logger.MaskEmail(user.Email)).Msg("user logged out")
	}
	if err := h.sessions.SignOut(c); err != nil {
		h.log.Error().Err(err).Msg("clear session")
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) AccessDenied(c *gin.Context) {
	render(c, http.StatusOK, "access_denied.html", gin.H{"Title": "Access denied"})
}
