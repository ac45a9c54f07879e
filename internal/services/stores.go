package services

import (
	"context"
	"time"

	"github.com/agrienergy/agri-produce/internal/models"
)

// UserStore is the identity persistence the services need. Lookups return
// ErrNotFound for missing rows and Create returns ErrDuplicateEmail when the
// normalized email is already taken.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByNormalizedEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	AddToRole(ctx context.Context, userID string, role models.RoleName) error
	Delete(ctx context.Context, userID string) error
	ListInRole(ctx context.Context, role models.RoleName) ([]models.User, error)

	// RecordFailedAccess increments the failure counter in the store and, once
	// it reaches maxAttempts, sets the lockout end and resets the counter. It
	// reports whether this call locked the account.
	RecordFailedAccess(ctx context.Context, userID string, maxAttempts int, lockoutEnd time.Time) (bool, error)
	ResetAccessFailed(ctx context.Context, userID string) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	ListByFarmer(ctx context.Context, farmerID string) ([]models.Product, error)
	ListFiltered(ctx context.Context, query ProductQuery) ([]models.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}
