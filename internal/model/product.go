package model

import "time"

// Product represents a manufactured part with its drawing references.
type Product struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"size:256;not null;uniqueIndex:idx_product_drawing"`
	DrawingNumber string `gorm:"size:128;not null;uniqueIndex:idx_product_drawing"`
	Comments      string
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	// Associations
	Dimensions []Dimension `gorm:"foreignKey:ProductID"`
	Mold       *Mold       `gorm:"foreignKey:ProductID"`
}

// Dimension is a measurable feature of a product with an asymmetric
// tolerance band around its nominal value.
type Dimension struct {
	ID             int64   `gorm:"primaryKey"`
	ProductID      int64   `gorm:"not null;uniqueIndex:idx_dimension_name"`
	Name           string  `gorm:"size:128;not null;uniqueIndex:idx_dimension_name"`
	NominalValue   float64 `gorm:"not null"`
	ToleranceMinus float64 `gorm:"not null"`
	TolerancePlus  float64 `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Associations
	Product Product `gorm:"constraint:OnDelete:CASCADE"`
}
