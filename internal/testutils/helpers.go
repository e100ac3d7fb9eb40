// Package testutils holds helpers shared by package tests.
package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/shablon/internal/compiler"
	"github.com/aretw0/shablon/pkg/adapters/sqlite"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/ports"
	"github.com/stretchr/testify/require"
)

// OpenSQLite opens a migrated SQLite store in a temporary directory and closes
// it when the test ends. It fails the test immediately on error.
func OpenSQLite(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open sqlite store")
	t.Cleanup(func() { store.Close() })
	return store
}

// Compile commits d to store and returns the report.
func Compile(t *testing.T, store ports.GraphWriter, d domain.Draft) compiler.Report {
	t.Helper()

	rep, err := compiler.New(store).Compile(context.Background(), d)
	require.NoError(t, err, "Failed to compile draft %q", d.Template.Name)
	return rep
}
