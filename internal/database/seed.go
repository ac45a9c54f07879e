package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrienergy/agri-produce/internal/logger"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	SeedEmployeeEmail = "employee1@agrienergy.com"
	SeedFarmerEmail   = "farmer1@agrifarm.com"
)

type seedUser struct {
	Email    string
	FullName string
	Role     models.RoleName
}

var seedUsers = []seedUser{
	{Email: SeedEmployeeEmail, FullName: "Employee One", Role: models.RoleEmployee},
	{Email: SeedFarmerEmail, FullName: "Farmer One", Role: models.RoleFarmer},
}

func seedProducts(farmerID string) []models.Product {
	return []models.Product{
		{Name: "Tomatoes", Category: "Vegetables", ProductionDate: time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), FarmerID: farmerID},
		{Name: "Apples", Category: "Fruits", ProductionDate: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), FarmerID: farmerID},
		{Name: "Local Honey", Category: "Other", ProductionDate: time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC), FarmerID: farmerID},
	}
}

// Seed makes sure both roles exist, creates the demo employee and farmer when
// missing and gives the farmer three sample products if it has none. It is
// safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB, hasher services.PasswordHasher, password string, log zerolog.Logger) error {
	users := NewUserRepository(db)
	products := NewProductRepository(db)

	if err := users.EnsureRoles(ctx, models.AllRoles...); err != nil {
		return fmt.Errorf("ensure roles: %w", err)
	}

	var farmerID string
	for _, su := range seedUsers {
		user, err := ensureSeedUser(ctx, users, hasher, su, password, log)
		if err != nil {
			log.Error().Err(err).Str("email", logger.MaskEmail(su.Email)).Msg("failed to create seed user")
			continue
		}
		if su.Role == models.RoleFarmer {
			farmerID = user.ID
		}
	}

	if farmerID == "" {
		return nil
	}

	count, err := products.CountByFarmer(ctx, farmerID)
	if err != nil {
		return fmt.Errorf("count seed products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range seedProducts(farmerID) {
		if err := products.Create(ctx, &p); err != nil {
			return fmt.Errorf("create seed product %s: %w", p.Name, err)
		}
	}
	log.Info().Int("count", 3).Msg("created seed products")
	return nil
}

func ensureSeedUser(ctx context.Context, users *UserRepository, hasher services.PasswordHasher, su seedUser, password string, log zerolog.Logger) (*models.User, error) {
	existing, err := users.FindByNormalizedEmail(ctx, su.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return nil, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        su.Email,
		FullName:     su.FullName,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := users.AddToRole(ctx, user.ID, su.Role); err != nil {
		_ = users.Delete(ctx, user.ID)
		return nil, fmt.Errorf("add to role %s: %w", su.Role, err)
	}

	log.Info().Str("email", logger.MaskEmail(su.Email)).Str("role", string(su.Role)).Msg("created seed user")
	return user, nil
}
