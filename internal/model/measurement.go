package model

import "time"

// Measurement is one recorded dimension reading. Rows are immutable once
// written; all readings entered together share one SubmissionID.
type Measurement struct {
	ID            int64     `gorm:"primaryKey"`
	ProductID     int64     `gorm:"not null;index"`
	DimensionID   int64     `gorm:"not null;index"`
	MeasuredValue float64   `gorm:"not null"`
	MeasuredAt    time.Time `gorm:"not null;index"`
	MachineNumber string    `gorm:"size:64;not null;index"`
	Count         int       `gorm:"not null"`
	Inspector     string    `gorm:"size:128;not null"`
	Shift         string    `gorm:"size:32"`
	SubmissionID  string    `gorm:"size:64;not null;index"`

	// Associations
	Product   Product
	Dimension Dimension
}
