package database

import (
	"context"

	"github.com/agrienergy/agri-produce/internal/models"
	"gorm.io/gorm"
)

// AuditRepository writes and reads the audit trail.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, userID, entity, entityID, action, details string) error {
	entry := models.AuditLog{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if userID != "" {
		entry.UserID = &userID
	}
	return r.db.WithContext(ctx).Omit("User").Create(&entry).Error
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	logs := make([]models.AuditLog, 0)
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
