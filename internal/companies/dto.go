package companies

import (
	"time"

	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/internal/marketing"
	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// CompanyDTO is the company payload returned to clients.
type CompanyDTO struct {
	ID                   uuid.UUID            `json:"id"`
	Name                 string               `json:"name"`
	Website              *string              `json:"website,omitempty"`
	ContactEmail         *string              `json:"contact_email,omitempty"`
	Description          *string              `json:"description,omitempty"`
	LogoURL              *string              `json:"logo_url,omitempty"`
	Categories           []string             `json:"categories"`
	Status               string               `json:"status"`
	DefaultMarketing     *types.MarketingData `json:"default_marketing,omitempty"`
	MarketingComplete    bool                 `json:"marketing_complete"`
	ConnectedToCompanyID *uuid.UUID           `json:"connected_to_company_id,omitempty"`
	ConnectionNotes      *string              `json:"connection_notes,omitempty"`
	RejectionReason      *string              `json:"rejection_reason,omitempty"`
	ApprovedAt           *time.Time           `json:"approved_at,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// NewCompanyDTO builds a DTO from the persisted model. The completeness flag
// is recomputed, never read from the stored value.
func NewCompanyDTO(company *models.Company) *CompanyDTO {
	if company == nil {
		return nil
	}
	return &CompanyDTO{
		ID:                   company.ID,
		Name:                 company.Name,
		Website:              company.Website,
		ContactEmail:         company.ContactEmail,
		Description:          company.Description,
		LogoURL:              company.LogoURL,
		Categories:           append([]string{}, company.Categories...),
		Status:               string(company.Status),
		DefaultMarketing:     company.DefaultMarketing,
		MarketingComplete:    marketing.IsComplete(company.DefaultMarketing),
		ConnectedToCompanyID: company.ConnectedToCompanyID,
		ConnectionNotes:      company.ConnectionNotes,
		RejectionReason:      company.RejectionReason,
		ApprovedAt:           company.ApprovedAt,
		CreatedAt:            company.CreatedAt,
		UpdatedAt:            company.UpdatedAt,
	}
}

// CompanyListResult carries one page of companies plus the next cursor.
type CompanyListResult struct {
	Companies  []CompanyDTO `json:"companies"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// MatchCandidateDTO is an advisory merge suggestion shown to admins.
type MatchCandidateDTO struct {
	Company *CompanyDTO `json:"company"`
	Score   int         `json:"score"`
	Reasons []string    `json:"reasons"`
}
