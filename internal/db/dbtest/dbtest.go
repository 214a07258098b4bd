// Package dbtest opens throwaway sqlite stores for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/db"
)

// New returns an empty store with the current schema in a temp dir that
// is removed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if _, err := db.EnsureSchema(ctx, gdb, db.SchemaVersion); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// NewSeeded is New plus the demo accounts and catalogs.
func NewSeeded(t testing.TB) *gorm.DB {
	t.Helper()

	gdb := New(t)
	if err := db.Seed(context.Background(), gdb); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return gdb
}
