package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/logger"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/rs/zerolog"
)

type LoginResult int

const (
	LoginInvalidCredentials LoginResult = iota
	LoginSucceeded
	LoginLockedOut
)

func (r LoginResult) String() string {
	switch r {
	case LoginSucceeded:
		return "succeeded"
	case LoginLockedOut:
		return "locked_out"
	default:
		return "invalid_credentials"
	}
}

type LockoutPolicy struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

func NewLockoutPolicy(cfg config.LockoutConfig) LockoutPolicy {
	return LockoutPolicy{MaxFailedAttempts: cfg.MaxFailedAttempts, Duration: cfg.Duration}
}

// AccountService verifies credentials and owns the per-account lockout state.
// Session issuance is left to the HTTP layer.
type AccountService struct {
	users   UserStore
	hasher  PasswordHasher
	lockout LockoutPolicy
	now     func() time.Time
	log     zerolog.Logger

	dummyHash func() string
}

func NewAccountService(users UserStore, hasher PasswordHasher, lockout LockoutPolicy, log zerolog.Logger) *AccountService {
	return &AccountService{
		users:   users,
		hasher:  hasher,
		lockout: lockout,
		now:     time.Now,
		log:     log.With().Str("service", "account").Logger(),

		dummyHash: sync.OnceValue(func() string {
			hash, _ := hasher.Hash("agri-produce-unknown-account")
			return hash
		}),
	}
}

// WithClock replaces the time source; used by tests to move past a lockout.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// Login checks email and password. The returned user is set only on
// LoginSucceeded. A non-nil error means the store failed, not the credentials.
func (s *AccountService) Login(ctx context.Context, email, password string, rememberMe bool) (LoginResult, *models.User, error) {
	masked := logger.MaskEmail(email)

	user, err := s.users.FindByNormalizedEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		// same hashing cost as a wrong password for a real account
		_ = s.hasher.Compare(s.dummyHash(), password)
		s.log.Info().Str("email", masked).Msg("login for unknown email")
		return LoginInvalidCredentials, nil, nil
	}
	if err != nil {
		return LoginInvalidCredentials, nil, persistence("find user", err)
	}

	now := s.now()
	if user.IsLockedOut(now) {
		s.log.Warn().Str("email", masked).Time("lockout_end", *user.LockoutEnd).Msg("login while locked out")
		return LoginLockedOut, nil, nil
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		locked, err := s.users.RecordFailedAccess(ctx, user.ID, s.lockout.MaxFailedAttempts, now.Add(s.lockout.Duration))
		if err != nil {
			return LoginInvalidCredentials, nil, persistence("record failed access", err)
		}
		if locked {
			s.log.Warn().Str("email", masked).Msg("account locked out after repeated failures")
			return LoginLockedOut, nil, nil
		}
		s.log.Info().Str("email", masked).Msg("invalid password")
		return LoginInvalidCredentials, nil, nil
	}

	if user.AccessFailedCount > 0 || user.LockoutEnd != nil {
		if err := s.users.ResetAccessFailed(ctx, user.ID); err != nil {
			return LoginInvalidCredentials, nil, persistence("reset failed access", err)
		}
		user.AccessFailedCount = 0
		user.LockoutEnd = nil
	}

	s.log.Info().Str("email", masked).Bool("remember_me", rememberMe).Msg("user logged in")
	return LoginSucceeded, user, nil
}
