package handlers

import (
	"net/http"

	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAuditLogs(c *gin.Context) {
	logs, err := h.audit.ListRecent(c.Request.Context(), auditPageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("list audit logs")
		logs = []models.AuditLog{}
	}
	render(c, http.StatusOK, "audit_list.html", gin.H{
		"Title": "Audit log",
		"Logs":  logs,
	})
}
