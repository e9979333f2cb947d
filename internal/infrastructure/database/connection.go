package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/riceops/production-planning/internal/adapters/persistence"
	"github.com/riceops/production-planning/internal/infrastructure/config"
)

// NewConnection opens a postgres or sqlite database described by cfg
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	if cfg.Type == "postgres" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}

	if cfg.Type == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
		sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	} else {
		// every sqlite connection to ":memory:" is a separate database
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// NewTestConnection creates an in-memory SQLite database for testing
func NewTestConnection() (*gorm.DB, error) {
	cfg := &config.DatabaseConfig{
		Type: "sqlite",
		Path: ":memory:",
	}

	db, err := NewConnection(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate test database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates every table the planning engine uses
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&persistence.GroupModel{},
		&persistence.PlotModel{},
		&persistence.RiceVarietyModel{},
		&persistence.ProductionPlanModel{},
		&persistence.ProductionStageModel{},
		&persistence.ProductionTaskModel{},
		&persistence.ProductionTaskMaterialModel{},
		&persistence.PlotCultivationModel{},
		&persistence.CultivationVersionModel{},
		&persistence.CultivationTaskModel{},
		&persistence.CultivationTaskMaterialModel{},
		&persistence.MaterialModel{},
		&persistence.MaterialPriceModel{},
		&persistence.MaterialDistributionModel{},
		&persistence.SystemSettingModel{},
		&persistence.FailedActivationModel{},
	); err != nil {
		return err
	}

	// At most one live bulk distribution per (cultivation, material); GORM tags cannot express the predicate.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_material_distributions_active_bulk
		ON material_distributions (plot_cultivation_id, material_id)
		WHERE related_task_id IS NULL AND status <> 'REJECTED'`).Error; err != nil {
		return fmt.Errorf("failed to create distribution slot index: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
