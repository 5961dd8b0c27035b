package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quality-control-backend/internal/model"
	"quality-control-backend/internal/tolerance"
)

// MoldStatus is a mold row enriched with its maintenance bucket.
type MoldStatus struct {
	model.Mold
	ProductName     string     `json:"product_name"`
	CyclesRemaining int64      `json:"cycles_remaining"`
	Health          MoldHealth `json:"health"`
}

// MoldDetail bundles a mold with its maintenance, rework and problem logs.
type MoldDetail struct {
	MoldStatus
	Maintenance []model.MaintenanceRecord `json:"maintenance"`
	Rework      []model.ReworkRecord      `json:"rework"`
	Problems    []model.MoldProblem       `json:"problems"`
}

// MeasurementReport is a measurement joined with its dimension spec and the
// static tolerance check applied.
type MeasurementReport struct {
	ID             int64     `json:"id"`
	ProductName    string    `json:"product_name"`
	DimensionName  string    `json:"dimension_name"`
	MeasuredValue  float64   `json:"measured_value"`
	NominalValue   float64   `json:"nominal_value"`
	ToleranceMinus float64   `json:"tolerance_minus"`
	TolerancePlus  float64   `json:"tolerance_plus"`
	MeasuredAt     time.Time `json:"measured_at"`
	MachineNumber  string    `json:"machine_number"`
	Count          int       `json:"count"`
	Inspector      string    `json:"inspector"`
	Shift          string    `json:"shift"`
	InTolerance    bool      `json:"in_tolerance"`
}

// MoldOverview lists every mold with its health classification.
func (s *gormStore) MoldOverview(ctx context.Context) ([]MoldStatus, error) {
	var molds []model.Mold
	if err := s.db.WithContext(ctx).Preload("Product").Order("created_at DESC").Find(&molds).Error; err != nil {
		return nil, fmt.Errorf("failed to list molds: %w", err)
	}

	statuses := make([]MoldStatus, 0, len(molds))
	for _, m := range molds {
		statuses = append(statuses, s.moldStatus(m))
	}
	return statuses, nil
}

// MoldDetail returns one mold with its full maintenance history.
func (s *gormStore) MoldDetail(ctx context.Context, moldID int64) (*MoldDetail, error) {
	var mold model.Mold
	err := s.db.WithContext(ctx).Preload("Product").First(&mold, moldID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mold %d: %w", moldID, err)
	}

	detail := &MoldDetail{MoldStatus: s.moldStatus(mold)}
	if err := s.db.WithContext(ctx).Where("mold_id = ?", moldID).
		Order("scheduled_date DESC").Find(&detail.Maintenance).Error; err != nil {
		return nil, fmt.Errorf("failed to load maintenance for mold %d: %w", moldID, err)
	}
	if err := s.db.WithContext(ctx).Where("mold_id = ?", moldID).
		Order("rework_date DESC").Find(&detail.Rework).Error; err != nil {
		return nil, fmt.Errorf("failed to load rework for mold %d: %w", moldID, err)
	}
	if err := s.db.WithContext(ctx).Where("mold_id = ?", moldID).
		Order("report_date DESC").Find(&detail.Problems).Error; err != nil {
		return nil, fmt.Errorf("failed to load problems for mold %d: %w", moldID, err)
	}
	return detail, nil
}

// RecentMeasurements returns the latest readings with the in/out-of-tolerance
// classification applied.
func (s *gormStore) RecentMeasurements(ctx context.Context, limit int) ([]MeasurementReport, error) {
	if limit <= 0 {
		limit = 50
	}

	type row struct {
		ID             int64
		MeasuredValue  float64
		MeasuredAt     time.Time
		MachineNumber  string
		Count          int
		Inspector      string
		Shift          string
		ProductName    string
		DimensionName  string
		NominalValue   float64
		ToleranceMinus float64
		TolerancePlus  float64
	}
	var rows []row
	if err := s.db.WithContext(ctx).Model(&model.Measurement{}).
		Select("measurements.*, products.name AS product_name, dimensions.name AS dimension_name, " +
			"dimensions.nominal_value, dimensions.tolerance_minus, dimensions.tolerance_plus").
		Joins("JOIN products ON products.id = measurements.product_id").
		Joins("JOIN dimensions ON dimensions.id = measurements.dimension_id").
		Order("measurements.measured_at DESC, measurements.id DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent measurements: %w", err)
	}

	reports := make([]MeasurementReport, 0, len(rows))
	for _, r := range rows {
		reports = append(reports, MeasurementReport{
			ID:             r.ID,
			ProductName:    r.ProductName,
			DimensionName:  r.DimensionName,
			MeasuredValue:  r.MeasuredValue,
			NominalValue:   r.NominalValue,
			ToleranceMinus: r.ToleranceMinus,
			TolerancePlus:  r.TolerancePlus,
			MeasuredAt:     r.MeasuredAt,
			MachineNumber:  r.MachineNumber,
			Count:          r.Count,
			Inspector:      r.Inspector,
			Shift:          r.Shift,
			InTolerance:    tolerance.Evaluate(r.MeasuredValue, r.NominalValue, r.ToleranceMinus, r.TolerancePlus),
		})
	}
	return reports, nil
}

func (s *gormStore) moldStatus(m model.Mold) MoldStatus {
	return MoldStatus{
		Mold:            m,
		ProductName:     m.Product.Name,
		CyclesRemaining: m.MaintenanceThreshold - m.TotalCycles,
		Health:          HealthFor(m.TotalCycles, m.MaintenanceThreshold, s.cfg.DueSoonMargin),
	}
}
