package enums

import "fmt"

// CompanyStatus represents the canonical company_status enum in Postgres.
type CompanyStatus string

const (
	CompanyStatusPending      CompanyStatus = "pending"
	CompanyStatusApproved     CompanyStatus = "approved"
	CompanyStatusRejected     CompanyStatus = "rejected"
	CompanyStatusSuspended    CompanyStatus = "suspended"
	CompanyStatusAdminCreated CompanyStatus = "admin_created"
	CompanyStatusClaimPending CompanyStatus = "claim_pending"
	CompanyStatusClaimed      CompanyStatus = "claimed"
	CompanyStatusConnected    CompanyStatus = "connected"
)

var validCompanyStatuses = []CompanyStatus{
	CompanyStatusPending,
	CompanyStatusApproved,
	CompanyStatusRejected,
	CompanyStatusSuspended,
	CompanyStatusAdminCreated,
	CompanyStatusClaimPending,
	CompanyStatusClaimed,
	CompanyStatusConnected,
}

// String implements fmt.Stringer.
func (s CompanyStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CompanyStatus.
func (s CompanyStatus) IsValid() bool {
	for _, candidate := range validCompanyStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanSourceMarketing reports whether a company in this status may serve as the
// inherited marketing-data source for new deal approvals. Rejected companies
// are never a source; suspended companies retain their data but stop feeding
// new approvals.
func (s CompanyStatus) CanSourceMarketing() bool {
	switch s {
	case CompanyStatusRejected, CompanyStatusSuspended:
		return false
	}
	return true
}

// ParseCompanyStatus converts raw input into a CompanyStatus.
func ParseCompanyStatus(value string) (CompanyStatus, error) {
	for _, candidate := range validCompanyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid company status %q", value)
}
