package model

import "time"

// Mold is the tool that produces a product. TotalCycles only grows through
// cycle attribution and only resets to zero on maintenance or rework
// completion.
type Mold struct {
	ID                   int64  `gorm:"primaryKey"`
	ProductID            int64  `gorm:"not null;uniqueIndex:idx_mold_number"`
	Name                 string `gorm:"size:256;not null"`
	Number               string `gorm:"size:64;not null;uniqueIndex:idx_mold_number"`
	TotalCycles          int64  `gorm:"not null;default:0"`
	MaintenanceThreshold int64  `gorm:"not null"`
	LastMaintenanceDate  *time.Time
	Status               string `gorm:"size:32;not null;default:active"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Associations
	Product Product
}

// MaintenanceRecord is a scheduled (and later completed) maintenance entry
// for a mold. Completing one resets the mold's cycle counter.
type MaintenanceRecord struct {
	ID              int64     `gorm:"primaryKey"`
	MoldID          int64     `gorm:"not null;index"`
	MaintenanceType string    `gorm:"size:64;not null"`
	ScheduledDate   time.Time `gorm:"not null"`
	CompletedDate   *time.Time
	Technician      string `gorm:"size:128"`
	ChecklistItems  string
	Notes           string
	TechnicianNotes string
	Status          string `gorm:"size:32;not null;default:scheduled"`
	CreatedAt       time.Time

	// Associations
	Mold Mold
}

// ReworkRecord logs a repair performed on a mold. Recording one resets the
// mold's cycle counter.
type ReworkRecord struct {
	ID            int64     `gorm:"primaryKey"`
	MoldID        int64     `gorm:"not null;index"`
	ReworkType    string    `gorm:"size:64;not null"`
	ReworkDate    time.Time `gorm:"not null"`
	CompletedDate *time.Time
	Technician    string `gorm:"size:128;not null"`
	Description   string
	PartsReplaced string
	Cost          float64
	CreatedAt     time.Time

	// Associations
	Mold Mold
}

// MoldProblem is an inspector-reported issue against a mold.
type MoldProblem struct {
	ID          int64     `gorm:"primaryKey"`
	MoldID      int64     `gorm:"not null;index"`
	ProblemType string    `gorm:"size:64;not null"`
	Description string
	Inspector   string    `gorm:"size:128;not null"`
	ReportDate  time.Time `gorm:"not null"`
	Comments    string
	Status      string `gorm:"size:32;not null;default:open"`

	// Associations
	Mold Mold
}
