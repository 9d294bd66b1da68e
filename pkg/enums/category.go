package enums

import "fmt"

// Category is the marketplace vertical a company or deal belongs to.
type Category string

const (
	CategoryPropTrading    Category = "prop_trading"
	CategoryFuturesTrading Category = "futures_trading"
	CategoryBrokers        Category = "brokers"
	CategoryCrypto         Category = "crypto"
	CategoryTradingTools   Category = "trading_tools"
	CategoryEducation      Category = "education"
)

var validCategories = []Category{
	CategoryPropTrading,
	CategoryFuturesTrading,
	CategoryBrokers,
	CategoryCrypto,
	CategoryTradingTools,
	CategoryEducation,
}

// Categories returns all known categories in display order.
func Categories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// ParseCategories validates a list of raw category tags. The list must be
// non-empty and free of duplicates.
func ParseCategories(values []string) ([]Category, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}
	seen := make(map[Category]struct{}, len(values))
	out := make([]Category, 0, len(values))
	for _, raw := range values {
		cat, err := ParseCategory(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cat]; dup {
			return nil, fmt.Errorf("duplicate category %q", raw)
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out, nil
}
