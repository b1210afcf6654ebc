// Package repotest opens migrated throwaway sqlite databases for tests.
package repotest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSQLite returns a migrated database in t's temp dir, closed on cleanup.
func NewSQLite(t testing.TB) *repository.DB {
	t.Helper()
	ctx := context.Background()
	logger := Logger()

	db, err := repository.OpenSQLite(ctx, repository.SQLiteDSN(filepath.Join(t.TempDir(), "vetting.db")), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(logger) })

	require.NoError(t, repository.Migrate(ctx, db.Driver))
	return db
}
