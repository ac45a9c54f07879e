package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agrienergy/agri-produce/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("store unavailable")

type stubUserStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	nextID     int
	addRoleErr error
	findErr    error
	deleteErr  error
	deleted    []string
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[string]*models.User{}}
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubUserStore) FindByNormalizedEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.users {
		if u.NormalizedEmail == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubUserStore) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByNormalizedEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *stubUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := models.NormalizeEmail(user.Email)
	for _, u := range s.users {
		if u.NormalizedEmail == normalized {
			return ErrDuplicateEmail
		}
	}
	s.nextID++
	user.ID = fmt.Sprintf("user-%d", s.nextID)
	user.NormalizedEmail = normalized
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *stubUserStore) AddToRole(_ context.Context, userID string, role models.RoleName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addRoleErr != nil {
		return s.addRoleErr
	}
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Roles = append(u.Roles, models.UserRole{UserID: userID, RoleName: role})
	return nil
}

func (s *stubUserStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.users, userID)
	s.deleted = append(s.deleted, userID)
	return nil
}

func (s *stubUserStore) ListInRole(_ context.Context, role models.RoleName) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.HasRole(role) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubUserStore) RecordFailedAccess(_ context.Context, userID string, maxAttempts int, lockoutEnd time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false, ErrNotFound
	}
	u.AccessFailedCount++
	if u.AccessFailedCount >= maxAttempts {
		end := lockoutEnd
		u.LockoutEnd = &end
		u.AccessFailedCount = 0
		return true, nil
	}
	return false, nil
}

func (s *stubUserStore) ResetAccessFailed(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.AccessFailedCount = 0
		u.LockoutEnd = nil
	}
	return nil
}

type stubProductStore struct {
	products []models.Product
	err      error
	lastQ    ProductQuery
}

func (s *stubProductStore) Create(_ context.Context, product *models.Product) error {
	if s.err != nil {
		return s.err
	}
	product.ID = uint(len(s.products) + 1)
	s.products = append(s.products, *product)
	return nil
}

func (s *stubProductStore) ListByFarmer(_ context.Context, farmerID string) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Product
	for _, p := range s.products {
		if p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProductStore) ListFiltered(_ context.Context, q ProductQuery) ([]models.Product, error) {
	s.lastQ = q
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubProductStore) DistinctCategories(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"Fruits"}, nil
}

func fastHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.MinCost}
}
