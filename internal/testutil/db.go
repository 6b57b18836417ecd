// Package testutil provides shared test fixtures.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"taskpoints/internal/repository"
)

// NewTestDB opens a migrated database in a per-test temp directory and
// closes it when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err != nil {
			t.Errorf("getting db handle: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	return db
}
