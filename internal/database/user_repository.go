package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ services.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByNormalizedEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("normalized_email = ?", models.NormalizeEmail(email)).
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("normalized_email = ?", models.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *UserRepository) AddToRole(ctx context.Context, userID string, role models.RoleName) error {
	membership := models.UserRole{UserID: userID, RoleName: role}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&membership).Error
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}

func (r *UserRepository) ListInRole(ctx context.Context, role models.RoleName) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_name = ?", role).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) RecordFailedAccess(ctx context.Context, userID string, maxAttempts int, lockoutEnd time.Time) (bool, error) {
	locked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("access_failed_count", gorm.Expr("access_failed_count + 1")).Error; err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND access_failed_count >= ?", userID, maxAttempts).
			UpdateColumns(map[string]any{
				"access_failed_count": 0,
				"lockout_end":         lockoutEnd,
			})
		if res.Error != nil {
			return res.Error
		}
		locked = res.RowsAffected > 0
		return nil
	})
	return locked, err
}

func (r *UserRepository) ResetAccessFailed(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]any{
			"access_failed_count": 0,
			"lockout_end":         nil,
		}).Error
}

// EnsureRoles creates any missing role rows.
func (r *UserRepository) EnsureRoles(ctx context.Context, roles ...models.RoleName) error {
	for _, name := range roles {
		role := models.Role{Name: name}
		if err := r.db.WithContext(ctx).FirstOrCreate(&role, models.Role{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return services.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return services.ErrDuplicateEmail
	default:
		return err
	}
}
