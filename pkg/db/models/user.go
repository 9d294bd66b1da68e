package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/pkg/enums"
)

// User is a platform account. Broker users are bound to the company whose
// deals they manage; admin users have no company binding.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null"`
	CompanyID    *uuid.UUID     `gorm:"column:company_id;type:uuid"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`

	LastLoggedInAt *time.Time `gorm:"column:last_logged_in_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
