package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// Company is a brand on the marketplace. Its DefaultMarketing value is the
// source of truth that broker deals inherit unless they carry an override.
type Company struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string              `gorm:"column:name;not null"`
	Website      *string             `gorm:"column:website"`
	ContactEmail *string             `gorm:"column:contact_email"`
	Description  *string             `gorm:"column:description"`
	LogoURL      *string             `gorm:"column:logo_url"`
	Categories   pq.StringArray      `gorm:"column:categories;type:text[];not null"`
	Status       enums.CompanyStatus `gorm:"column:status;type:company_status;not null;default:'pending'"`

	DefaultMarketing *types.MarketingData `gorm:"column:default_marketing;type:jsonb"`

	// Merge workflow bookkeeping. Set only when Status is connected.
	ConnectedToCompanyID *uuid.UUID `gorm:"column:connected_to_company_id;type:uuid"`
	ConnectionNotes      *string    `gorm:"column:connection_notes"`

	RejectionReason *string    `gorm:"column:rejection_reason"`
	SubmittedBy     *uuid.UUID `gorm:"column:submitted_by;type:uuid"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
