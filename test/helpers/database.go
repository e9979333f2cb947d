package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/infrastructure/database"
)

// NewTestDB creates a migrated SQLite in-memory database closed at test cleanup
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}
