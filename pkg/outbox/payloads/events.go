package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/pkg/enums"
)

// CompanySubmittedEvent signals a new company waiting for review.
type CompanySubmittedEvent struct {
	CompanyID  uuid.UUID           `json:"company_id"`
	Name       string              `json:"name"`
	Status     enums.CompanyStatus `json:"status"`
	Categories []string            `json:"categories"`
}

// CompanyApprovedEvent is emitted when an admin approves a company.
type CompanyApprovedEvent struct {
	CompanyID  uuid.UUID `json:"company_id"`
	Name       string    `json:"name"`
	ApprovedBy uuid.UUID `json:"approved_by"`
	ApprovedAt time.Time `json:"approved_at"`
}

// CompanyRejectedEvent is emitted when an admin rejects a company.
type CompanyRejectedEvent struct {
	CompanyID  uuid.UUID `json:"company_id"`
	Name       string    `json:"name"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason,omitempty"`
}

// CompanyConnectedEvent reports a duplicate company being merged into a primary.
type CompanyConnectedEvent struct {
	CompanyID        uuid.UUID `json:"company_id"`
	PrimaryCompanyID uuid.UUID `json:"primary_company_id"`
	ConnectedBy      uuid.UUID `json:"connected_by"`
	Notes            string    `json:"notes,omitempty"`
}

// DealSubmittedEvent signals a broker deal entering the review queue.
type DealSubmittedEvent struct {
	DealID      uuid.UUID      `json:"deal_id"`
	CompanyID   uuid.UUID      `json:"company_id"`
	Title       string         `json:"title"`
	Category    enums.Category `json:"category"`
	SubmittedBy uuid.UUID      `json:"submitted_by"`
}

// DealApprovedEvent carries the approval-time marketing snapshot summary.
type DealApprovedEvent struct {
	DealID          uuid.UUID             `json:"deal_id"`
	CompanyID       uuid.UUID             `json:"company_id"`
	Title           string                `json:"title"`
	MarketingSource enums.MarketingSource `json:"marketing_source"`
	ApprovedBy      uuid.UUID             `json:"approved_by"`
	ApprovedAt      time.Time             `json:"approved_at"`
}

// DealRejectedEvent is emitted when an admin rejects a broker deal.
type DealRejectedEvent struct {
	DealID     uuid.UUID `json:"deal_id"`
	CompanyID  uuid.UUID `json:"company_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason,omitempty"`
}

// DealClickEvent records a consumer following a deal's affiliate link.
type DealClickEvent struct {
	DealID    uuid.UUID  `json:"deal_id"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	DealKind  string     `json:"deal_kind"`
	Referrer  string     `json:"referrer,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	ClientIP  string     `json:"client_ip,omitempty"`
	ClickedAt time.Time  `json:"clicked_at"`
}
