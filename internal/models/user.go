package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Portal roles mirrored from the CRM that issues our access tokens.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleSecretary  = "secretary"
	RoleClient     = "client"
)

// User is a read-only directory record for a notification recipient.
// Accounts are provisioned and maintained by the main CRM backend; this
// service only resolves contact details and activity status from it.
type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Email  string `gorm:"uniqueIndex;not null" json:"email"`
	Mobile string `gorm:"type:varchar(32)" json:"mobile"`

	Role     string `gorm:"type:varchar(32);not null;default:'client'" json:"role"`
	Locale   string `gorm:"type:varchar(8);default:'el'" json:"locale"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName renders the display name used in outbound messages.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
