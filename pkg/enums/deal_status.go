package enums

import "fmt"

// DealStatus tracks the broker deal lifecycle.
type DealStatus string

const (
	DealStatusDraft           DealStatus = "draft"
	DealStatusPendingApproval DealStatus = "pending_approval"
	DealStatusApproved        DealStatus = "approved"
	DealStatusRejected        DealStatus = "rejected"
	DealStatusArchived        DealStatus = "archived"
)

var validDealStatuses = []DealStatus{
	DealStatusDraft,
	DealStatusPendingApproval,
	DealStatusApproved,
	DealStatusRejected,
	DealStatusArchived,
}

// String implements fmt.Stringer.
func (s DealStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DealStatus.
func (s DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}

// AdminDealStatus tracks admin-authored deals, which are live by construction.
type AdminDealStatus string

const (
	AdminDealStatusActive   AdminDealStatus = "active"
	AdminDealStatusArchived AdminDealStatus = "archived"
)

var validAdminDealStatuses = []AdminDealStatus{
	AdminDealStatusActive,
	AdminDealStatusArchived,
}

// String implements fmt.Stringer.
func (s AdminDealStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AdminDealStatus.
func (s AdminDealStatus) IsValid() bool {
	for _, candidate := range validAdminDealStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAdminDealStatus converts raw input into an AdminDealStatus.
func ParseAdminDealStatus(value string) (AdminDealStatus, error) {
	for _, candidate := range validAdminDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admin deal status %q", value)
}
