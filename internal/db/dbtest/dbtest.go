// Package dbtest opens migrated sqlite databases for tests.
package dbtest

import (
	"log/slog"
	"path/filepath"
	"testing"

	"weatherdiary/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated database in t's temp dir. It uses a single
// connection so concurrent transactions serialize instead of failing with
// "database is locked".
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "weatherdiary.db") + "?_busy_timeout=5000"
	gdb, err := db.Open(sqlite.Open(dsn), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}
