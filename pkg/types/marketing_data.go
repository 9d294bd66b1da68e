package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// MarketingData is the canonical affiliate marketing value shared by companies
// and deals. A company stores it as the inheritable default; a deal stores it
// as an explicit override or as the frozen snapshot taken at approval time.
// There is exactly one field naming convention; integration boundaries convert
// into this shape instead of inventing aliases.
type MarketingData struct {
	AffiliateLink      string            `json:"affiliate_link"`
	CouponCode         string            `json:"coupon_code"`
	TrackingParameters map[string]string `json:"tracking_parameters,omitempty"`
	ConversionPixel    *string           `json:"conversion_pixel,omitempty"`
	Notes              *string           `json:"notes,omitempty"`

	// IsComplete is a cache of marketing.IsComplete, recomputed on every
	// write path. It is never accepted from client input as authoritative.
	IsComplete bool `json:"is_complete"`
}

// Value marshals the struct into a JSONB column literal.
func (m MarketingData) Value() (driver.Value, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marketing data: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the JSONB column value.
func (m *MarketingData) Scan(value interface{}) error {
	if value == nil {
		*m = MarketingData{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("marketing data: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*m = MarketingData{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Trimmed returns a copy with link and coupon whitespace removed.
func (m MarketingData) Trimmed() MarketingData {
	out := m
	out.AffiliateLink = strings.TrimSpace(m.AffiliateLink)
	out.CouponCode = strings.TrimSpace(m.CouponCode)
	return out
}

// Clone returns a deep copy so callers cannot alias the stored maps.
func (m *MarketingData) Clone() *MarketingData {
	if m == nil {
		return nil
	}
	cpy := *m
	if m.TrackingParameters != nil {
		cpy.TrackingParameters = make(map[string]string, len(m.TrackingParameters))
		for k, v := range m.TrackingParameters {
			cpy.TrackingParameters[k] = v
		}
	}
	if m.ConversionPixel != nil {
		pixel := *m.ConversionPixel
		cpy.ConversionPixel = &pixel
	}
	if m.Notes != nil {
		notes := *m.Notes
		cpy.Notes = &notes
	}
	return &cpy
}
