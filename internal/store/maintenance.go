package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quality-control-backend/internal/model"
)

// ScheduleMaintenance records a planned maintenance entry for a mold.
func (s *gormStore) ScheduleMaintenance(ctx context.Context, rec *model.MaintenanceRecord) error {
	if err := requireMold(s.db.WithContext(ctx), rec.MoldID); err != nil {
		return err
	}
	if rec.Status == "" {
		rec.Status = "scheduled"
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to schedule maintenance for mold %d: %w", rec.MoldID, err)
	}
	return nil
}

// CompleteMaintenance marks a maintenance record completed, stamps the mold's
// last maintenance date, and resets its cycle counter to zero.
func (s *gormStore) CompleteMaintenance(ctx context.Context, maintenanceID int64, technician, notes string, completedAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.MaintenanceRecord
		if err := tx.First(&rec, maintenanceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMaintenanceNotFound
			}
			return fmt.Errorf("failed to load maintenance record %d: %w", maintenanceID, err)
		}

		if err := tx.Model(&rec).Updates(map[string]any{
			"completed_date":   completedAt,
			"technician":       technician,
			"technician_notes": notes,
			"status":           "completed",
		}).Error; err != nil {
			return fmt.Errorf("failed to complete maintenance record %d: %w", maintenanceID, err)
		}

		if err := tx.Model(&model.Mold{}).Where("id = ?", rec.MoldID).Updates(map[string]any{
			"last_maintenance_date": completedAt,
			"total_cycles":          0,
		}).Error; err != nil {
			return fmt.Errorf("failed to reset cycles for mold %d: %w", rec.MoldID, err)
		}
		return nil
	})
}

// AddRework logs a rework entry and resets the mold's cycle counter.
func (s *gormStore) AddRework(ctx context.Context, rec *model.ReworkRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMold(tx, rec.MoldID); err != nil {
			return err
		}
		if rec.ReworkDate.IsZero() {
			rec.ReworkDate = time.Now().UTC()
		}
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to record rework for mold %d: %w", rec.MoldID, err)
		}
		if err := resetCycles(tx, rec.MoldID); err != nil {
			return err
		}
		return nil
	})
}

// CompleteRework stamps a rework record's completion date. The cycle reset
// already happened when the rework was recorded; repeating it here keeps the
// counter at zero for molds that produced nothing in between.
func (s *gormStore) CompleteRework(ctx context.Context, reworkID int64, completedAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.ReworkRecord
		if err := tx.First(&rec, reworkID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReworkNotFound
			}
			return fmt.Errorf("failed to load rework record %d: %w", reworkID, err)
		}
		if err := tx.Model(&rec).Update("completed_date", completedAt).Error; err != nil {
			return fmt.Errorf("failed to complete rework record %d: %w", reworkID, err)
		}
		return nil
	})
}

// ReportProblem files an inspector-reported problem against a mold.
func (s *gormStore) ReportProblem(ctx context.Context, problem *model.MoldProblem) error {
	if err := requireMold(s.db.WithContext(ctx), problem.MoldID); err != nil {
		return err
	}
	if problem.ReportDate.IsZero() {
		problem.ReportDate = time.Now().UTC()
	}
	if problem.Status == "" {
		problem.Status = "open"
	}
	if err := s.db.WithContext(ctx).Create(problem).Error; err != nil {
		return fmt.Errorf("failed to report problem for mold %d: %w", problem.MoldID, err)
	}
	return nil
}

// UpdateThreshold changes a mold's maintenance threshold.
func (s *gormStore) UpdateThreshold(ctx context.Context, moldID, threshold int64) error {
	if threshold <= 0 {
		return ErrInvalidThreshold
	}
	res := s.db.WithContext(ctx).Model(&model.Mold{}).
		Where("id = ?", moldID).
		Update("maintenance_threshold", threshold)
	if res.Error != nil {
		return fmt.Errorf("failed to update threshold for mold %d: %w", moldID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMoldNotFound
	}
	return nil
}

func requireMold(tx *gorm.DB, moldID int64) error {
	var count int64
	if err := tx.Model(&model.Mold{}).Where("id = ?", moldID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up mold %d: %w", moldID, err)
	}
	if count == 0 {
		return ErrMoldNotFound
	}
	return nil
}

func resetCycles(tx *gorm.DB, moldID int64) error {
	if err := tx.Model(&model.Mold{}).Where("id = ?", moldID).Update("total_cycles", 0).Error; err != nil {
		return fmt.Errorf("failed to reset cycles for mold %d: %w", moldID, err)
	}
	return nil
}
