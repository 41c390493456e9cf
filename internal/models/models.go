package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RoleDriver   Role = "driver"
	RoleCommuter Role = "commuter"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleDriver, RoleCommuter:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"            json:"id"`
	FirstName    string    `gorm:"not null"                        json:"firstName"`
	LastName     string    `gorm:"not null"                        json:"lastName"`
	PhoneNumber  string    `gorm:"uniqueIndex;not null"            json:"phoneNumber"`
	Email        string    `gorm:"uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Age          int       `gorm:"not null"                        json:"age"`
	Role         Role      `gorm:"not null;default:commuter"       json:"role"`
	IsActive     bool      `gorm:"not null;default:true"           json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken holds at most one row per user. Expiry lives inside the
// signed token itself, not in a column.
type RefreshToken struct {
	ID     uint      `gorm:"primaryKey"                     json:"id"`
	Token  string    `gorm:"not null"                       json:"token"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
}
