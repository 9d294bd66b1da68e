package enums

import "fmt"

// OutboxEventType enumerates the domain events emitted via the outbox.
type OutboxEventType string

const (
	EventCompanySubmitted OutboxEventType = "company.submitted"
	EventCompanyApproved  OutboxEventType = "company.approved"
	EventCompanyRejected  OutboxEventType = "company.rejected"
	EventCompanyConnected OutboxEventType = "company.connected"
	EventDealSubmitted    OutboxEventType = "deal.submitted"
	EventDealApproved     OutboxEventType = "deal.approved"
	EventDealRejected     OutboxEventType = "deal.rejected"
	EventDealClick        OutboxEventType = "deal.click"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCompanySubmitted,
	EventCompanyApproved,
	EventCompanyRejected,
	EventCompanyConnected,
	EventDealSubmitted,
	EventDealApproved,
	EventDealRejected,
	EventDealClick,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateCompany OutboxAggregateType = "company"
	AggregateDeal    OutboxAggregateType = "deal"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateCompany,
	AggregateDeal,
}

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (t OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}
