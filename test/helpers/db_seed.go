package helpers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceops/production-planning/internal/adapters/persistence"
)

// Seed writes the world's plan, group, cultivations, catalog and settings to db
// so GORM repositories see the same universe as the in-memory doubles.
func (w *PlanWorld) Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := persistence.GroupModel{ID: w.GroupID, Name: "Tani Makmur"}
		if !w.NoSeason {
			season := w.SeasonID
			group.CurrentSeasonID = &season
		}
		if err := tx.Create(&group).Error; err != nil {
			return fmt.Errorf("seed group: %w", err)
		}

		for i, plotID := range w.plotIDs {
			plot := persistence.PlotModel{ID: plotID, GroupID: w.GroupID, Name: fmt.Sprintf("Plot %d", i+1)}
			if err := tx.Create(&plot).Error; err != nil {
				return fmt.Errorf("seed plot: %w", err)
			}
		}

		planModel := persistence.ProductionPlanModel{
			ID:        w.PlanID,
			Name:      "Wet season plan",
			GroupID:   w.GroupID,
			Status:    string(w.Status),
			CreatedAt: w.Clock.Now(),
		}
		if err := tx.Create(&planModel).Error; err != nil {
			return fmt.Errorf("seed plan: %w", err)
		}

		for _, s := range w.stages {
			m := persistence.ProductionStageModel{ID: s.ID, PlanID: s.PlanID, Name: s.Name, SequenceOrder: s.SequenceOrder}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seed stage: %w", err)
			}
		}
		for _, t := range w.tasks {
			m := persistence.ProductionTaskModel{
				ID:               t.ID,
				StageID:          t.StageID,
				Name:             t.Name,
				Description:      t.Description,
				TaskType:         t.TaskType,
				SequenceOrder:    t.SequenceOrder,
				ScheduledDate:    t.ScheduledDate,
				ScheduledEndDate: t.ScheduledEndDate,
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seed task: %w", err)
			}
		}
		for _, tm := range w.materials {
			m := persistence.ProductionTaskMaterialModel{
				ID:                 tm.ID,
				TaskID:             tm.TaskID,
				MaterialID:         tm.MaterialID,
				QuantityPerHectare: tm.QuantityPerHectare,
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seed task material: %w", err)
			}
		}

		if err := w.seedCultivations(tx); err != nil {
			return err
		}
		if err := w.seedCatalog(tx); err != nil {
			return err
		}

		for key, value := range w.Settings {
			m := persistence.SystemSettingModel{Key: key, Value: value, UpdatedAt: w.Clock.Now()}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seed setting %s: %w", key, err)
			}
		}
		return nil
	})
}

func (w *PlanWorld) seedCultivations(tx *gorm.DB) error {
	c := w.Cultivations
	c.mu.RLock()
	defer c.mu.RUnlock()

	varieties := make(map[uuid.UUID]bool)
	for _, pc := range c.cultivations {
		if pc.VarietyID != uuid.Nil && !varieties[pc.VarietyID] {
			varieties[pc.VarietyID] = true
			v := persistence.RiceVarietyModel{ID: pc.VarietyID, Name: pc.VarietyName}
			if err := tx.Create(&v).Error; err != nil {
				return fmt.Errorf("seed variety: %w", err)
			}
		}
		m := persistence.PlotCultivationModel{
			ID:        pc.ID,
			PlotID:    pc.PlotID,
			SeasonID:  pc.SeasonID,
			VarietyID: pc.VarietyID,
			Area:      pc.Area,
			CreatedAt: pc.CreatedAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("seed cultivation: %w", err)
		}
	}

	for _, v := range c.versions {
		m := persistence.CultivationVersionModel{
			ID:                v.ID,
			PlotCultivationID: v.PlotCultivationID,
			VersionOrder:      v.VersionOrder,
			IsActive:          v.IsActive,
			CreatedAt:         v.CreatedAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("seed version: %w", err)
		}
	}
	return nil
}

func (w *PlanWorld) seedCatalog(tx *gorm.DB) error {
	mr := w.Materials
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	for _, mat := range mr.materials {
		m := persistence.MaterialModel{
			ID:                mat.ID,
			Name:              mat.Name,
			Type:              string(mat.Type),
			Unit:              mat.Unit,
			AmountPerMaterial: mat.AmountPerMaterial,
			IsPartition:       mat.IsPartition,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("seed material: %w", err)
		}
	}
	for _, p := range mr.prices {
		m := persistence.MaterialPriceModel{
			ID:               p.ID,
			MaterialID:       p.MaterialID,
			PricePerMaterial: p.PricePerMaterial,
			ValidFrom:        p.ValidFrom,
			ValidTo:          p.ValidTo,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("seed price: %w", err)
		}
	}
	return nil
}
