package helpers

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/infrastructure/database"
)

// SharedTestDB is the database shared by every BDD scenario
var SharedTestDB *gorm.DB

// InitializeSharedTestDB creates and migrates the shared test database.
// Called once in TestMain before running any scenario.
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// TruncateAllTables clears every planning table, children first
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}

	tables := []string{
		"failed_activations",
		"system_settings",
		"material_distributions",
		"cultivation_task_materials",
		"cultivation_tasks",
		"cultivation_versions",
		"plot_cultivations",
		"production_task_materials",
		"production_tasks",
		"production_stages",
		"production_plans",
		"material_prices",
		"materials",
		"rice_varieties",
		"plots",
		"groups",
	}

	for _, table := range tables {
		if err := SharedTestDB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// CloseSharedTestDB closes the shared database connection
func CloseSharedTestDB() error {
	if SharedTestDB == nil {
		return nil
	}
	return database.Close(SharedTestDB)
}
