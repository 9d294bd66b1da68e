package enums

import "fmt"

// MarketingSource tags how a deal's effective affiliate link and coupon were
// derived: inherited from the company default, an explicit per-deal override,
// or manual (partial data, caller-managed).
type MarketingSource string

const (
	MarketingSourceInherited MarketingSource = "inherited"
	MarketingSourceOverride  MarketingSource = "override"
	MarketingSourceManual    MarketingSource = "manual"
)

var validMarketingSources = []MarketingSource{
	MarketingSourceInherited,
	MarketingSourceOverride,
	MarketingSourceManual,
}

// String implements fmt.Stringer.
func (s MarketingSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MarketingSource.
func (s MarketingSource) IsValid() bool {
	for _, candidate := range validMarketingSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMarketingSource converts raw input into a MarketingSource.
func ParseMarketingSource(value string) (MarketingSource, error) {
	for _, candidate := range validMarketingSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid marketing source %q", value)
}
