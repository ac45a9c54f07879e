package handlers

import (
	"context"

	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/rs/zerolog"
)

const auditPageSize = 200

// AuditTrail is the audit log the handlers write to and the employee audit page reads.
type AuditTrail interface {
	Record(ctx context.Context, userID, entity, entityID, action, details string) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type Handler struct {
	accounts *services.AccountService
	users    *services.UserService
	products *services.ProductService
	audit    AuditTrail
	sessions *middleware.Sessions
	log      zerolog.Logger
}

func New(
	accounts *services.AccountService,
	users *services.UserService,
	products *services.ProductService,
	audit AuditTrail,
	sessions *middleware.Sessions,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		accounts: accounts,
		users:    users,
		products: products,
		audit:    audit,
		sessions: sessions,
		log:      log.With().Str("component", "handlers").Logger(),
	}
}

func (h *Handler) recordAudit(ctx context.Context, userID, entity, entityID, action, details string) {
	if err := h.audit.Record(ctx, userID, entity, entityID, action, details); err != nil {
		h.log.Error().Err(err).Str("entity", entity).Str("action", action).Msg("write audit log")
	}
}

func dashboardFor(user *models.User) string {
	switch {
	case user == nil:
		return "/"
	case user.HasRole(models.RoleEmployee):
		return "/employee"
	case user.HasRole(models.RoleFarmer):
		return "/farmer"
	default:
		return "/"
	}
}
