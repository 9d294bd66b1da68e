// Package marketing holds the pure resolution rules for affiliate marketing
// data: what counts as complete, and which link/coupon a deal effectively
// carries. Everything here is deterministic and side-effect free; services
// call into this package and persist the outcome.
package marketing

import (
	"strings"

	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// Human-readable field names surfaced to admins when data is missing. The
// order is fixed: affiliate link always precedes coupon code.
const (
	FieldAffiliateLink = "Affiliate Link"
	FieldCouponCode    = "Coupon Code"
)

// IsComplete reports whether the marketing value suffices for a deal to go
// live: both the affiliate link and the coupon code must be non-empty after
// trimming. Nil is never complete.
func IsComplete(md *types.MarketingData) bool {
	if md == nil {
		return false
	}
	return strings.TrimSpace(md.AffiliateLink) != "" && strings.TrimSpace(md.CouponCode) != ""
}

// Normalize trims the link and coupon and recomputes the IsComplete cache.
// Every write path runs marketing data through here; the flag stored on a
// company or deal is never trusted as input.
func Normalize(md *types.MarketingData) *types.MarketingData {
	if md == nil {
		return nil
	}
	out := md.Clone()
	*out = out.Trimmed()
	out.IsComplete = IsComplete(out)
	return out
}

// Resolution is the effective marketing data for a deal plus where it came
// from and what is still missing.
type Resolution struct {
	AffiliateLink      string                `json:"affiliate_link"`
	CouponCode         string                `json:"coupon_code"`
	TrackingParameters map[string]string     `json:"tracking_parameters,omitempty"`
	Source             enums.MarketingSource `json:"source"`
	MissingFields      []string              `json:"missing_fields"`
}

// Complete reports whether nothing is missing.
func (r Resolution) Complete() bool {
	return len(r.MissingFields) == 0
}

// Snapshot converts the resolution into a MarketingData value suitable for
// freezing onto an approved deal.
func (r Resolution) Snapshot() *types.MarketingData {
	md := &types.MarketingData{
		AffiliateLink:      r.AffiliateLink,
		CouponCode:         r.CouponCode,
		TrackingParameters: r.TrackingParameters,
	}
	md.IsComplete = IsComplete(md)
	return md
}

// Resolve determines the effective affiliate link and coupon for a deal.
//
// Precedence: a complete explicit override wins outright; otherwise the
// company default applies when the company may act as a source and its data
// is complete; otherwise the best partial data available is returned with
// Source manual and the missing field names listed in fixed order.
//
// Companies that are rejected or suspended never feed resolution: rejected
// ones are dead records, suspended ones keep their data but stop backing new
// approvals.
func Resolve(deal *models.BrokerDeal, company *models.Company) Resolution {
	if deal != nil && deal.MarketingSource == enums.MarketingSourceOverride && IsComplete(deal.MarketingOverride) {
		ov := deal.MarketingOverride
		return Resolution{
			AffiliateLink:      strings.TrimSpace(ov.AffiliateLink),
			CouponCode:         strings.TrimSpace(ov.CouponCode),
			TrackingParameters: ov.TrackingParameters,
			Source:             enums.MarketingSourceOverride,
			MissingFields:      []string{},
		}
	}

	var inherited *types.MarketingData
	if company != nil && company.Status.CanSourceMarketing() {
		inherited = company.DefaultMarketing
	}
	if IsComplete(inherited) {
		return Resolution{
			AffiliateLink:      strings.TrimSpace(inherited.AffiliateLink),
			CouponCode:         strings.TrimSpace(inherited.CouponCode),
			TrackingParameters: inherited.TrackingParameters,
			Source:             enums.MarketingSourceInherited,
			MissingFields:      []string{},
		}
	}

	// Partial data: prefer override fields, then the inheritable default,
	// field by field.
	res := Resolution{Source: enums.MarketingSourceManual, MissingFields: []string{}}
	if deal != nil && deal.MarketingOverride != nil {
		res.AffiliateLink = strings.TrimSpace(deal.MarketingOverride.AffiliateLink)
		res.CouponCode = strings.TrimSpace(deal.MarketingOverride.CouponCode)
		res.TrackingParameters = deal.MarketingOverride.TrackingParameters
	}
	if inherited != nil {
		if res.AffiliateLink == "" {
			res.AffiliateLink = strings.TrimSpace(inherited.AffiliateLink)
		}
		if res.CouponCode == "" {
			res.CouponCode = strings.TrimSpace(inherited.CouponCode)
		}
		if res.TrackingParameters == nil {
			res.TrackingParameters = inherited.TrackingParameters
		}
	}

	if res.AffiliateLink == "" {
		res.MissingFields = append(res.MissingFields, FieldAffiliateLink)
	}
	if res.CouponCode == "" {
		res.MissingFields = append(res.MissingFields, FieldCouponCode)
	}
	return res
}
