package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// AdminDeal is an admin-authored offer. It always carries its own marketing
// data, never inherits from a company, and is live by construction.
type AdminDeal struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   *uuid.UUID            `gorm:"column:company_id;type:uuid"`
	Title       string                `gorm:"column:title;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.Category        `gorm:"column:category;type:category;not null"`
	Status      enums.AdminDealStatus `gorm:"column:status;type:admin_deal_status;not null;default:'active'"`

	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`

	Marketing types.MarketingData `gorm:"column:marketing;type:jsonb;not null"`

	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
