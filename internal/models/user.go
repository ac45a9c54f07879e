package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleName string

const (
	RoleEmployee RoleName = "Employee"
	RoleFarmer   RoleName = "Farmer"
)

// AllRoles lists the roles the seed step guarantees.
var AllRoles = []RoleName{RoleEmployee, RoleFarmer}

type Role struct {
	Name RoleName `gorm:"primaryKey;type:varchar(32)"`
}

// UserRole is the membership row between a user and a role.
type UserRole struct {
	UserID   string   `gorm:"primaryKey;type:varchar(36)"`
	RoleName RoleName `gorm:"primaryKey;type:varchar(32)"`

	Role Role `gorm:"foreignKey:RoleName;references:Name"`
}

type User struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	Email           string `gorm:"size:256;not null"`
	NormalizedEmail string `gorm:"size:256;uniqueIndex;not null"`
	FullName        string `gorm:"size:100"`
	PasswordHash    string `gorm:"not null"`

	AccessFailedCount int `gorm:"not null;default:0"`
	LockoutEnd        *time.Time

	Roles []UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.NormalizedEmail = NormalizeEmail(u.Email)
	return nil
}

func (u User) HasRole(role RoleName) bool {
	for _, r := range u.Roles {
		if r.RoleName == role {
			return true
		}
	}
	return false
}

// IsLockedOut reports whether a lockout is still in force at now.
func (u User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
