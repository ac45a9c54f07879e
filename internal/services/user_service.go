package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agrienergy/agri-produce/internal/logger"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/rs/zerolog"
)

type CreateFarmerInput struct {
	FullName string
	Email    string
	Password string
}

type UserService struct {
	users  UserStore
	hasher PasswordHasher
	policy PasswordPolicy
	log    zerolog.Logger
}

func NewUserService(users UserStore, hasher PasswordHasher, policy PasswordPolicy, log zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		policy: policy,
		log:    log.With().Str("service", "user").Logger(),
	}
}

// CreateFarmer creates the account and its Farmer membership as one unit. If
// the membership cannot be written the new user row is deleted again and the
// role failure is reported as ValidationErrors. If that delete fails too, the
// result also matches ErrPersistence.
func (s *UserService) CreateFarmer(ctx context.Context, in CreateFarmerInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	masked := logger.MaskEmail(email)

	var errs ValidationErrors
	if email == "" {
		errs.Add("Email", "Email address is required.")
	} else {
		exists, err := s.users.ExistsByNormalizedEmail(ctx, models.NormalizeEmail(email))
		if err != nil {
			return nil, persistence("check email", err)
		}
		if exists {
			errs.Add("Email", fmt.Sprintf("Email '%s' is already taken.", email))
		}
	}
	errs = append(errs, s.policy.Validate(in.Password)...)
	if len(errs) > 0 {
		s.log.Warn().Str("email", masked).Strs("errors", errs.Messages()).Msg("farmer account rejected")
		return nil, errs
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ValidationErrors{{Field: "Email", Message: fmt.Sprintf("Email '%s' is already taken.", email)}}
		}
		s.log.Error().Err(err).Str("email", masked).Msg("create farmer user")
		return nil, persistence("create user", err)
	}

	s.log.Info().Str("email", masked).Msg("user created, adding to Farmer role")
	if err := s.users.AddToRole(ctx, user.ID, models.RoleFarmer); err != nil {
		s.log.Warn().Err(err).Str("email", masked).Msg("role assignment failed, deleting orphaned user")
		roleErrs := ValidationErrors{{Message: fmt.Sprintf("Could not assign the %s role: %v", models.RoleFarmer, err)}}
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", user.ID).Msg("delete orphaned user")
			return nil, errors.Join(roleErrs, persistence("delete orphaned user", delErr))
		}
		return nil, roleErrs
	}

	user.Roles = []models.UserRole{{UserID: user.ID, RoleName: models.RoleFarmer}}
	return user, nil
}

// GetCurrentUser resolves a session principal. A nil user with a nil error
// means the principal no longer maps to a live account.
func (s *UserService) GetCurrentUser(ctx context.Context, principal string) (*models.User, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, principal)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("find current user", err)
	}
	return user, nil
}

// GetUsersInRole returns members in store order; callers sort for display.
func (s *UserService) GetUsersInRole(ctx context.Context, role models.RoleName) ([]models.User, error) {
	users, err := s.users.ListInRole(ctx, role)
	if err != nil {
		return nil, persistence("list users in role", err)
	}
	return users, nil
}
