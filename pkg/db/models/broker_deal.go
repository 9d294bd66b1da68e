package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// BrokerDeal is a broker-submitted offer tied to a company. Its effective
// affiliate link and coupon come from the company default or from an explicit
// override; approval freezes the resolved values onto ResolvedMarketing so a
// published deal never changes when the company edits its defaults.
type BrokerDeal struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID          `gorm:"column:company_id;type:uuid;not null"`
	Title       string             `gorm:"column:title;not null"`
	Description *string            `gorm:"column:description"`
	Category    enums.Category     `gorm:"column:category;type:category;not null"`
	Status      enums.DealStatus   `gorm:"column:status;type:deal_status;not null;default:'draft'"`

	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`

	MarketingSource   enums.MarketingSource `gorm:"column:marketing_source;type:marketing_source;not null;default:'inherited'"`
	MarketingOverride *types.MarketingData  `gorm:"column:marketing_override;type:jsonb"`
	OverriddenAt      *time.Time            `gorm:"column:overridden_at"`
	OverriddenBy      *uuid.UUID            `gorm:"column:overridden_by;type:uuid"`

	// ResolvedMarketing is the approval-time snapshot. Nil until approved.
	ResolvedMarketing *types.MarketingData `gorm:"column:resolved_marketing;type:jsonb"`

	SubmittedBy     uuid.UUID  `gorm:"column:submitted_by;type:uuid;not null"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`

	StartsAt  *time.Time `gorm:"column:starts_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`

	Company *Company `gorm:"foreignKey:CompanyID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
