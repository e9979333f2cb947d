package helpers

import (
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/adapters/persistence"
)

// TestRepositories holds the GORM repositories over one test database
type TestRepositories struct {
	DB            *gorm.DB
	Plans         *persistence.GormPlanRepository
	Cultivations  *persistence.GormCultivationRepository
	Tasks         *persistence.GormCultivationTaskRepository
	Materials     *persistence.GormMaterialRepository
	Distributions *persistence.GormDistributionRepository
	Settings      *persistence.GormSettingsStore
	Failures      *persistence.GormFailedActivationRepository
}

// NewTestRepositories wires every repository to db
func NewTestRepositories(db *gorm.DB) *TestRepositories {
	return &TestRepositories{
		DB:            db,
		Plans:         persistence.NewGormPlanRepository(db),
		Cultivations:  persistence.NewGormCultivationRepository(db),
		Tasks:         persistence.NewGormCultivationTaskRepository(db),
		Materials:     persistence.NewGormMaterialRepository(db),
		Distributions: persistence.NewGormDistributionRepository(db),
		Settings:      persistence.NewGormSettingsStore(db, nil),
		Failures:      persistence.NewGormFailedActivationRepository(db),
	}
}
