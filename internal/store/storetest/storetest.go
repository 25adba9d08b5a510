// Package storetest opens migrated stores for tests.
package storetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"

	"workspace-service/internal/store"
	"workspace-service/pkg/database"
)

// New returns a Store over a fresh on-disk SQLite database. A single
// connection is used so transactions serialize as they would under the
// tenant row lock.
func New(t testing.TB) *store.Store {
	t.Helper()

	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "workspace.db")), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return store.New(db)
}

// PostgresDSNEnv names the database NewPostgres connects to.
const PostgresDSNEnv = "WORKSPACE_TEST_DSN"

// NewPostgres returns a Store over the Postgres database named by
// PostgresDSNEnv, skipping the test when it is unset. The pool is left at
// its defaults so concurrent transactions run on separate connections.
func NewPostgres(t testing.TB) *store.Store {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}
	db, err := database.Open(postgres.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return store.New(db)
}
