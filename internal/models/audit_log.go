package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	UserID *string `gorm:"type:varchar(36);index"`
	User   *User   `gorm:"constraint:OnDelete:SET NULL"`

	Entity   string `gorm:"size:50;not null"` // "user", "product", "session"
	EntityID string `gorm:"size:36"`
	Action   string `gorm:"size:50;not null"` // "create", "login", "lockout"
	Details  string `gorm:"type:text"`
}
