package store

import "time"

// DimensionReading is one measured value for a dimension within a batch.
type DimensionReading struct {
	DimensionID int64   `json:"dimension_id"`
	Value       float64 `json:"measured_value"`
}

// Submission is a validated measurement batch for one machine. All readings
// are persisted under one submission id; SubmissionID may be supplied by the
// client for idempotent retries and is generated otherwise.
type Submission struct {
	ProductID     int64              `json:"product_id"`
	MachineNumber string             `json:"machine_number"`
	Count         int                `json:"count"`
	MeasuredAt    time.Time          `json:"measured_at"`
	Inspector     string             `json:"inspector"`
	Shift         string             `json:"shift"`
	SubmissionID  string             `json:"submission_id"`
	Readings      []DimensionReading `json:"readings"`
}

// SubmissionResult reports the outcome of an accepted submission.
type SubmissionResult struct {
	SubmissionID string      `json:"submission_id"`
	Persisted    int         `json:"persisted"`
	Alerts       []MoldAlert `json:"alerts,omitempty"`
}

// MoldHealth is the maintenance bucket derived from a mold's cycle counter.
type MoldHealth string

const (
	HealthOK      MoldHealth = "ok"
	HealthDueSoon MoldHealth = "due_soon"
	HealthOverdue MoldHealth = "overdue"
)

// HealthFor classifies remaining = threshold - totalCycles: overdue at or
// below zero, due_soon within margin, ok otherwise.
func HealthFor(totalCycles, threshold, margin int64) MoldHealth {
	remaining := threshold - totalCycles
	switch {
	case remaining <= 0:
		return HealthOverdue
	case remaining <= margin:
		return HealthDueSoon
	default:
		return HealthOK
	}
}

// MoldAlert is emitted when cycle attribution moves a mold into a worse
// maintenance bucket.
type MoldAlert struct {
	MoldID      int64      `json:"mold_id"`
	MoldNumber  string     `json:"mold_number"`
	Health      MoldHealth `json:"health"`
	TotalCycles int64      `json:"total_cycles"`
	Threshold   int64      `json:"threshold"`
}
