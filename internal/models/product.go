package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	ProductNameMaxLength     = 100
	ProductCategoryMaxLength = 50
)

// Product is produce recorded by the farmer that owns it.
type Product struct {
	ID             uint      `gorm:"primaryKey"`
	Name           string    `gorm:"size:100;not null"`
	Category       string    `gorm:"size:50;not null;index"`
	ProductionDate time.Time `gorm:"not null;index"`

	// NormalizedCategory is Category trimmed and lowercased in Go; filters match on it.
	NormalizedCategory string `gorm:"size:50;not null;index"`

	FarmerID string `gorm:"type:varchar(36);not null;index"`
	Farmer   *User  `gorm:"foreignKey:FarmerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

func (p *Product) BeforeSave(_ *gorm.DB) error {
	p.NormalizedCategory = NormalizeCategory(p.Category)
	return nil
}

func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
