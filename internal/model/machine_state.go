package model

import "time"

// MachineProductionState is the per-machine memory used by cycle
// attribution: the last product run on a machine and the last submitted
// count. One row per machine number, continuously upserted.
type MachineProductionState struct {
	MachineNumber     string    `gorm:"primaryKey;size:64"`
	LastProductID     int64     `gorm:"not null"`
	LastCount         int       `gorm:"not null"`
	LastMeasurementID int64     `gorm:"not null"`
	LastUpdate        time.Time `gorm:"not null"`
}

// MachineMoldAssignment records which mold is currently mounted on a
// machine. At most one row per machine may carry active status; a partial
// unique index created in db.Init enforces this.
type MachineMoldAssignment struct {
	ID            int64     `gorm:"primaryKey"`
	MachineNumber string    `gorm:"size:64;not null;index"`
	MoldID        int64     `gorm:"not null"`
	AssignedAt    time.Time `gorm:"not null"`
	AssignedBy    string    `gorm:"size:128;not null"`
	Status        string    `gorm:"size:32;not null;default:active"`

	// Associations
	Mold Mold
}
