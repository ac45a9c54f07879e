package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxConnectAttempts = 10
	connectRetryDelay  = 2 * time.Second
)

// Open connects to the configured database, retrying while the server comes
// up, and applies the schema.
func Open(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			&log,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}

	var db *gorm.DB
	for i := 1; i <= maxConnectAttempts; i++ {
		log.Info().Str("driver", cfg.Driver).Int("attempt", i).Int("max_attempts", maxConnectAttempts).Msg("connecting to database")

		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("failed to connect to database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", maxConnectAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.UserRole{},
		&models.Product{},
		&models.AuditLog{},
	)
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN makes sure the database directory exists and foreign keys are on,
// which the product and role cascades depend on.
func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") && !strings.Contains(path, ":memory:") {
		if dir := filepath.Dir(path); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
