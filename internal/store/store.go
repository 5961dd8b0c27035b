package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quality-control-backend/config"
	"quality-control-backend/internal/model"
)

// Store defines the interface for all database operations the quality core
// performs. Read-only dashboard handlers additionally use DB directly.
type Store interface {
	DB() *gorm.DB

	// Production event pipeline.
	ProcessSubmission(ctx context.Context, sub Submission) (*SubmissionResult, error)

	// Product lifecycle. Creating a product also creates its mold.
	CreateProduct(ctx context.Context, name, drawingNumber, comments string) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID int64) error

	// Maintenance workflow. Completing maintenance and recording rework are
	// the only operations that reset a mold's cycle counter.
	ScheduleMaintenance(ctx context.Context, rec *model.MaintenanceRecord) error
	CompleteMaintenance(ctx context.Context, maintenanceID int64, technician, notes string, completedAt time.Time) error
	AddRework(ctx context.Context, rec *model.ReworkRecord) error
	CompleteRework(ctx context.Context, reworkID int64, completedAt time.Time) error
	ReportProblem(ctx context.Context, problem *model.MoldProblem) error
	UpdateThreshold(ctx context.Context, moldID, threshold int64) error

	// Read side.
	MoldOverview(ctx context.Context) ([]MoldStatus, error)
	MoldDetail(ctx context.Context, moldID int64) (*MoldDetail, error)
	RecentMeasurements(ctx context.Context, limit int) ([]MeasurementReport, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	cfg config.QualityConfig
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, cfg config.QualityConfig) Store {
	return &gormStore{db: db, cfg: cfg}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ProcessSubmission runs the full production event sequence for one
// measurement batch: duplicate guard, measurement insert, cycle attribution
// and mold assignment, all inside a single transaction so a mid-sequence
// failure can never strand measurements without their ledger updates.
func (s *gormStore) ProcessSubmission(ctx context.Context, sub Submission) (*SubmissionResult, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	submissionID := sub.SubmissionID
	if submissionID == "" {
		submissionID = uuid.NewString()
	}
	measuredAt := sub.MeasuredAt
	if measuredAt.IsZero() {
		measuredAt = time.Now().UTC()
	}

	result := &SubmissionResult{SubmissionID: submissionID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mold, err := moldForProduct(tx, sub.ProductID)
		if err != nil {
			return err
		}

		if err := s.checkDuplicate(tx, sub, submissionID, measuredAt); err != nil {
			return err
		}

		rows := make([]model.Measurement, 0, len(sub.Readings))
		for _, r := range sub.Readings {
			rows = append(rows, model.Measurement{
				ProductID:     sub.ProductID,
				DimensionID:   r.DimensionID,
				MeasuredValue: r.Value,
				MeasuredAt:    measuredAt,
				MachineNumber: sub.MachineNumber,
				Count:         sub.Count,
				Inspector:     sub.Inspector,
				Shift:         sub.Shift,
				SubmissionID:  submissionID,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert measurements: %w", err)
		}
		result.Persisted = len(rows)
		lastMeasurementID := rows[len(rows)-1].ID

		alert, err := s.attributeCycles(tx, sub)
		if err != nil {
			return err
		}
		if alert != nil {
			result.Alerts = append(result.Alerts, *alert)
		}

		state := model.MachineProductionState{
			MachineNumber:     sub.MachineNumber,
			LastProductID:     sub.ProductID,
			LastCount:         sub.Count,
			LastMeasurementID: lastMeasurementID,
			LastUpdate:        measuredAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "machine_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_product_id", "last_count", "last_measurement_id", "last_update"}),
		}).Create(&state).Error; err != nil {
			return fmt.Errorf("failed to upsert machine state for %s: %w", sub.MachineNumber, err)
		}

		if err := upsertAssignment(tx, sub.MachineNumber, mold.ID, sub.Inspector, measuredAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateSubmission(sub Submission) error {
	if len(sub.Readings) == 0 {
		return ErrEmptyBatch
	}
	if sub.Count <= 0 {
		return ErrInvalidCount
	}
	if sub.MachineNumber == "" {
		return ErrMissingMachine
	}
	if sub.Inspector == "" {
		return ErrMissingInspector
	}
	return nil
}

// moldForProduct resolves the mold mounted for a product, distinguishing a
// missing product from a product that somehow lost its mold.
func moldForProduct(tx *gorm.DB, productID int64) (*model.Mold, error) {
	var mold model.Mold
	err := tx.Where("product_id = ?", productID).First(&mold).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var count int64
		if err := tx.Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to look up product %d: %w", productID, err)
		}
		if count == 0 {
			return nil, ErrProductNotFound
		}
		return nil, ErrMoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up mold for product %d: %w", productID, err)
	}
	return &mold, nil
}

// checkDuplicate rejects a batch whose submission id was already persisted,
// and optionally applies the coarser time-window heuristic: another batch for
// the same product, machine, calendar day and inspector within the configured
// window before this one.
func (s *gormStore) checkDuplicate(tx *gorm.DB, sub Submission, submissionID string, measuredAt time.Time) error {
	var existing int64
	if err := tx.Model(&model.Measurement{}).
		Where("submission_id = ?", submissionID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check submission id: %w", err)
	}
	if existing > 0 {
		return ErrDuplicateSubmission
	}

	if s.cfg.DuplicateWindow <= 0 {
		return nil
	}

	dayStart := time.Date(measuredAt.Year(), measuredAt.Month(), measuredAt.Day(), 0, 0, 0, 0, measuredAt.Location())
	var last model.Measurement
	err := tx.Where(
		"product_id = ? AND machine_number = ? AND inspector = ? AND measured_at >= ? AND measured_at < ?",
		sub.ProductID, sub.MachineNumber, sub.Inspector, dayStart, dayStart.AddDate(0, 0, 1),
	).Order("measured_at DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query prior measurements: %w", err)
	}

	if diff := measuredAt.Sub(last.MeasuredAt); diff >= 0 && diff < s.cfg.DuplicateWindow {
		return ErrDuplicateSubmission
	}
	return nil
}

// attributeCycles transfers the previously recorded count to the mold of the
// product that was mounted while those units were made. Returns an alert when
// the transfer moves that mold into a worse maintenance bucket.
func (s *gormStore) attributeCycles(tx *gorm.DB, sub Submission) (*MoldAlert, error) {
	q := tx
	// Row lock serializes concurrent submissions for the same machine.
	// SQLite (tests) serializes writers on its own and rejects FOR UPDATE.
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var prior model.MachineProductionState
	err := q.Where("machine_number = ?", sub.MachineNumber).First(&prior).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First submission for this machine: nothing to attribute.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read machine state for %s: %w", sub.MachineNumber, err)
	}
	if prior.LastProductID == sub.ProductID || prior.LastCount <= 0 {
		return nil, nil
	}

	var priorMold model.Mold
	err = tx.Where("product_id = ?", prior.LastProductID).First(&priorMold).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The previous product's mold is gone; the cycles have nowhere to go.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mold for product %d: %w", prior.LastProductID, err)
	}

	if err := tx.Model(&model.Mold{}).
		Where("id = ?", priorMold.ID).
		Update("total_cycles", gorm.Expr("total_cycles + ?", prior.LastCount)).Error; err != nil {
		return nil, fmt.Errorf("failed to attribute %d cycles to mold %d: %w", prior.LastCount, priorMold.ID, err)
	}

	before := HealthFor(priorMold.TotalCycles, priorMold.MaintenanceThreshold, s.cfg.DueSoonMargin)
	newTotal := priorMold.TotalCycles + int64(prior.LastCount)
	after := HealthFor(newTotal, priorMold.MaintenanceThreshold, s.cfg.DueSoonMargin)
	if after == before || after == HealthOK {
		return nil, nil
	}
	return &MoldAlert{
		MoldID:      priorMold.ID,
		MoldNumber:  priorMold.Number,
		Health:      after,
		TotalCycles: newTotal,
		Threshold:   priorMold.MaintenanceThreshold,
	}, nil
}

// upsertAssignment keeps at most one active assignment row per machine:
// reassignment updates the existing active row in place. The partial unique
// index from db.Init backs this up under concurrency.
func upsertAssignment(tx *gorm.DB, machineNumber string, moldID int64, assignedBy string, at time.Time) error {
	var existing model.MachineMoldAssignment
	err := tx.Where("machine_number = ? AND status = ?", machineNumber, "active").First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		assignment := model.MachineMoldAssignment{
			MachineNumber: machineNumber,
			MoldID:        moldID,
			AssignedAt:    at,
			AssignedBy:    assignedBy,
			Status:        "active",
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to create assignment for machine %s: %w", machineNumber, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query assignment for machine %s: %w", machineNumber, err)
	}

	if err := tx.Model(&existing).Updates(map[string]any{
		"mold_id":     moldID,
		"assigned_at": at,
		"assigned_by": assignedBy,
	}).Error; err != nil {
		return fmt.Errorf("failed to update assignment for machine %s: %w", machineNumber, err)
	}
	return nil
}

// CreateProduct inserts a product and automatically creates its mold, the
// pairing that cycle attribution relies on.
func (s *gormStore) CreateProduct(ctx context.Context, name, drawingNumber, comments string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).
			Where("LOWER(TRIM(name)) = LOWER(TRIM(?)) AND LOWER(TRIM(drawing_number)) = LOWER(TRIM(?))", name, drawingNumber).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check for existing product: %w", err)
		}
		if count > 0 {
			return ErrProductExists
		}

		product = model.Product{Name: name, DrawingNumber: drawingNumber, Comments: comments}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		mold := model.Mold{
			ProductID:            product.ID,
			Name:                 fmt.Sprintf("Mold for %s", name),
			Number:               fmt.Sprintf("M%04d", product.ID),
			MaintenanceThreshold: s.cfg.DefaultThreshold,
			Status:               "active",
		}
		if err := tx.Create(&mold).Error; err != nil {
			return fmt.Errorf("failed to create mold for product %d: %w", product.ID, err)
		}
		product.Mold = &mold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product together with its dimensions, measurements
// and mold.
func (s *gormStore) DeleteProduct(ctx context.Context, productID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Product{}, productID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product %d: %w", productID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.Measurement{}).Error; err != nil {
			return fmt.Errorf("failed to delete measurements for product %d: %w", productID, err)
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.Dimension{}).Error; err != nil {
			return fmt.Errorf("failed to delete dimensions for product %d: %w", productID, err)
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.Mold{}).Error; err != nil {
			return fmt.Errorf("failed to delete mold for product %d: %w", productID, err)
		}
		return nil
	})
}
