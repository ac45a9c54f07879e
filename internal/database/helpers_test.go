package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "agri-test.db"),
	}
	db, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func testHasher() services.BcryptHasher {
	return services.BcryptHasher{Cost: bcrypt.MinCost}
}

func seedTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, Seed(context.Background(), db, testHasher(), "Password.1", zerolog.Nop()))
}
