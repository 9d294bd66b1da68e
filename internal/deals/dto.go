package deals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koocao/reduzed-backend/internal/marketing"
	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// Deal kinds on the public surface.
const (
	DealKindBroker = "broker"
	DealKindAdmin  = "admin"
)

// BrokerDealDTO is the broker deal payload returned to brokers and admins.
type BrokerDealDTO struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`

	DiscountValue decimal.Decimal `json:"discount_value"`
	DiscountType  string          `json:"discount_type"`

	MarketingSource   string               `json:"marketing_source"`
	MarketingOverride *types.MarketingData `json:"marketing_override,omitempty"`
	ResolvedMarketing *types.MarketingData `json:"resolved_marketing,omitempty"`

	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`

	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewBrokerDealDTO builds a DTO from the persisted model.
func NewBrokerDealDTO(deal *models.BrokerDeal) *BrokerDealDTO {
	if deal == nil {
		return nil
	}
	return &BrokerDealDTO{
		ID:                deal.ID,
		CompanyID:         deal.CompanyID,
		Title:             deal.Title,
		Description:       deal.Description,
		Category:          string(deal.Category),
		Status:            string(deal.Status),
		DiscountValue:     deal.DiscountValue,
		DiscountType:      string(deal.DiscountType),
		MarketingSource:   string(deal.MarketingSource),
		MarketingOverride: deal.MarketingOverride,
		ResolvedMarketing: deal.ResolvedMarketing,
		SubmittedAt:       deal.SubmittedAt,
		ApprovedAt:        deal.ApprovedAt,
		RejectionReason:   deal.RejectionReason,
		StartsAt:          deal.StartsAt,
		ExpiresAt:         deal.ExpiresAt,
		CreatedAt:         deal.CreatedAt,
		UpdatedAt:         deal.UpdatedAt,
	}
}

// BrokerDealListResult carries one page of broker deals plus the next cursor.
type BrokerDealListResult struct {
	Deals      []BrokerDealDTO `json:"deals"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

// PublicDealListResult is a page of the merged consumer listing.
type PublicDealListResult struct {
	Deals      []PublicDealDTO `json:"deals"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

// ResolutionDTO reports the effective marketing for a deal in review: what
// would be frozen at approval, and what still blocks it.
type ResolutionDTO struct {
	AffiliateLink      string            `json:"affiliate_link"`
	CouponCode         string            `json:"coupon_code"`
	TrackingParameters map[string]string `json:"tracking_parameters,omitempty"`
	Source             string            `json:"source"`
	Complete           bool              `json:"complete"`
	MissingFields      []string          `json:"missing_fields"`
}

// NewResolutionDTO converts a marketing resolution into its API shape.
func NewResolutionDTO(res marketing.Resolution) *ResolutionDTO {
	return &ResolutionDTO{
		AffiliateLink:      res.AffiliateLink,
		CouponCode:         res.CouponCode,
		TrackingParameters: res.TrackingParameters,
		Source:             string(res.Source),
		Complete:           res.Complete(),
		MissingFields:      res.MissingFields,
	}
}

// AdminDealDTO is the admin deal payload returned to admins.
type AdminDealDTO struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   *uuid.UUID      `json:"company_id,omitempty"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`

	DiscountValue decimal.Decimal `json:"discount_value"`
	DiscountType  string          `json:"discount_type"`

	Marketing types.MarketingData `json:"marketing"`

	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewAdminDealDTO builds a DTO from the persisted model.
func NewAdminDealDTO(deal *models.AdminDeal) *AdminDealDTO {
	if deal == nil {
		return nil
	}
	return &AdminDealDTO{
		ID:            deal.ID,
		CompanyID:     deal.CompanyID,
		Title:         deal.Title,
		Description:   deal.Description,
		Category:      string(deal.Category),
		Status:        string(deal.Status),
		DiscountValue: deal.DiscountValue,
		DiscountType:  string(deal.DiscountType),
		Marketing:     deal.Marketing,
		StartsAt:      deal.StartsAt,
		ExpiresAt:     deal.ExpiresAt,
		CreatedAt:     deal.CreatedAt,
		UpdatedAt:     deal.UpdatedAt,
	}
}

// PublicDealDTO is the consumer-facing shape for the live listing. The coupon
// comes from the frozen snapshot, never recomputed at read time. The raw
// affiliate link stays server-side; consumers follow the redirect endpoint.
type PublicDealDTO struct {
	ID            uuid.UUID       `json:"id"`
	Kind          string          `json:"kind"`
	CompanyID     *uuid.UUID      `json:"company_id,omitempty"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	Category      string          `json:"category"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	DiscountType  string          `json:"discount_type"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

// NewPublicBrokerDealDTO builds the public shape from an approved broker deal.
func NewPublicBrokerDealDTO(deal *models.BrokerDeal) *PublicDealDTO {
	if deal == nil {
		return nil
	}
	dto := &PublicDealDTO{
		ID:            deal.ID,
		Kind:          DealKindBroker,
		CompanyID:     &deal.CompanyID,
		Title:         deal.Title,
		Description:   deal.Description,
		Category:      string(deal.Category),
		DiscountValue: deal.DiscountValue,
		DiscountType:  string(deal.DiscountType),
		ExpiresAt:     deal.ExpiresAt,
	}
	if deal.ResolvedMarketing != nil {
		dto.CouponCode = deal.ResolvedMarketing.CouponCode
	}
	return dto
}

// NewPublicAdminDealDTO builds the public shape from an active admin deal.
func NewPublicAdminDealDTO(deal *models.AdminDeal) *PublicDealDTO {
	if deal == nil {
		return nil
	}
	return &PublicDealDTO{
		ID:            deal.ID,
		Kind:          DealKindAdmin,
		CompanyID:     deal.CompanyID,
		Title:         deal.Title,
		Description:   deal.Description,
		Category:      string(deal.Category),
		DiscountValue: deal.DiscountValue,
		DiscountType:  string(deal.DiscountType),
		CouponCode:    deal.Marketing.CouponCode,
		ExpiresAt:     deal.ExpiresAt,
	}
}
