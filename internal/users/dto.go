package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/pkg/db/models"
)

// UserDTO is the user payload returned to admins. Password hashes never
// leave the service layer.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewUserDTO builds a DTO from the persisted model.
func NewUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// InviteResult pairs the created user with the one-time temporary password.
// The password is shown once and never stored in the clear.
type InviteResult struct {
	User         UserDTO `json:"user"`
	TempPassword string  `json:"temp_password"`
}
