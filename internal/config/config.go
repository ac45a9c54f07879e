package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Session  SessionConfig
	Password PasswordConfig
	Lockout  LockoutConfig
	Throttle ThrottleConfig
	Redis    RedisConfig
	Seed     SeedConfig
}

type AppConfig struct {
	Env        string // development, production
	LogLevel   string
	ServerPort string
}

type DBConfig struct {
	Driver string // postgres | sqlite
	DSN    string
}

type SessionConfig struct {
	Secret       string
	IdleTimeout  time.Duration
	RememberFor  time.Duration
	SecureCookie bool
}

type PasswordConfig struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

type LockoutConfig struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

// ThrottleConfig bounds login attempts per client IP, independent of account lockout.
type ThrottleConfig struct {
	Limit  int
	Window time.Duration
}

// RedisConfig is optional; an empty Addr keeps the login throttle in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SeedConfig struct {
	Enabled  bool
	Password string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:        v.GetString("APP_ENV"),
			LogLevel:   v.GetString("LOG_LEVEL"),
			ServerPort: v.GetString("SERVER_PORT"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:    v.GetString("DB_DSN"),
		},
		Session: SessionConfig{
			Secret:       v.GetString("SESSION_SECRET"),
			IdleTimeout:  v.GetDuration("SESSION_IDLE_TIMEOUT"),
			RememberFor:  v.GetDuration("SESSION_REMEMBER_FOR"),
			SecureCookie: v.GetBool("SESSION_SECURE_COOKIE"),
		},
		Password: PasswordConfig{
			MinLength:              v.GetInt("PASSWORD_MIN_LENGTH"),
			RequireDigit:           v.GetBool("PASSWORD_REQUIRE_DIGIT"),
			RequireLowercase:       v.GetBool("PASSWORD_REQUIRE_LOWERCASE"),
			RequireUppercase:       v.GetBool("PASSWORD_REQUIRE_UPPERCASE"),
			RequireNonAlphanumeric: v.GetBool("PASSWORD_REQUIRE_NON_ALPHANUMERIC"),
		},
		Lockout: LockoutConfig{
			MaxFailedAttempts: v.GetInt("LOCKOUT_MAX_ATTEMPTS"),
			Duration:          v.GetDuration("LOCKOUT_DURATION"),
		},
		Throttle: ThrottleConfig{
			Limit:  v.GetInt("LOGIN_RATE_LIMIT"),
			Window: v.GetDuration("LOGIN_RATE_WINDOW"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Seed: SeedConfig{
			Enabled:  v.GetBool("SEED_ENABLED"),
			Password: v.GetString("SEED_PASSWORD"),
		},
	}

	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DetectDriver(cfg.DB.DSN)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("DB_DSN", "data/agri-produce.db")

	v.SetDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	v.SetDefault("SESSION_REMEMBER_FOR", 30*24*time.Hour)
	v.SetDefault("SESSION_SECURE_COOKIE", false)

	v.SetDefault("PASSWORD_MIN_LENGTH", 6)
	v.SetDefault("PASSWORD_REQUIRE_DIGIT", true)
	v.SetDefault("PASSWORD_REQUIRE_LOWERCASE", true)
	v.SetDefault("PASSWORD_REQUIRE_UPPERCASE", false)
	v.SetDefault("PASSWORD_REQUIRE_NON_ALPHANUMERIC", false)

	v.SetDefault("LOCKOUT_MAX_ATTEMPTS", 5)
	v.SetDefault("LOCKOUT_DURATION", 5*time.Minute)

	v.SetDefault("LOGIN_RATE_LIMIT", 20)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SEED_ENABLED", true)
	v.SetDefault("SEED_PASSWORD", "Password.1")
}

func (c *Config) validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.DB.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Lockout.MaxFailedAttempts <= 0 {
		return errors.New("LOCKOUT_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// DetectDriver picks postgres for URL or key/value style postgres DSNs, sqlite otherwise.
func DetectDriver(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") {
		return "postgres"
	}
	return "sqlite"
}
