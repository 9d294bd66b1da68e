package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/internal/marketing"
	"github.com/koocao/reduzed-backend/pkg/auth"
	"github.com/koocao/reduzed-backend/pkg/db"
	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/outbox"
	"github.com/koocao/reduzed-backend/pkg/outbox/payloads"
	"github.com/koocao/reduzed-backend/pkg/pagination"
	"github.com/koocao/reduzed-backend/pkg/types"
)

// Service exposes company onboarding, review, and merge operations.
type Service interface {
	Register(ctx context.Context, actor auth.Actor, input RegisterCompanyInput) (*CompanyDTO, error)
	AdminCreate(ctx context.Context, actor auth.Actor, input RegisterCompanyInput) (*CompanyDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error)
	List(ctx context.Context, input ListCompaniesInput) (*CompanyListResult, error)
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, marketingData *types.MarketingData) (*CompanyDTO, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CompanyDTO, error)
	Suspend(ctx context.Context, actor auth.Actor, id uuid.UUID) (*CompanyDTO, error)
	Reactivate(ctx context.Context, actor auth.Actor, id uuid.UUID) (*CompanyDTO, error)
	UpdateMarketing(ctx context.Context, actor auth.Actor, id uuid.UUID, marketingData *types.MarketingData) (*CompanyDTO, error)
	MatchCandidates(ctx context.Context, pendingID uuid.UUID) ([]MatchCandidateDTO, error)
	Merge(ctx context.Context, actor auth.Actor, existingID, pendingID uuid.UUID, notes string) (*CompanyDTO, error)
}

// RegisterCompanyInput holds the validated payload to create a company.
type RegisterCompanyInput struct {
	Name             string
	Website          *string
	ContactEmail     *string
	Description      *string
	LogoURL          *string
	Categories       []enums.Category
	DefaultMarketing *types.MarketingData
}

// ListCompaniesInput filters the admin company listing.
type ListCompaniesInput struct {
	Status *enums.CompanyStatus
	Search string
	Limit  int
	Cursor string
}

var timeNow = time.Now

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	events   eventEmitter
}

// NewService constructs a company service instance.
func NewService(repo *Repository, dbClient *db.Client, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, dbClient: dbClient, events: events}, nil
}

// Register creates a self-registered company awaiting admin review.
func (s *service) Register(ctx context.Context, actor auth.Actor, input RegisterCompanyInput) (*CompanyDTO, error) {
	return s.create(ctx, actor, input, enums.CompanyStatusPending)
}

// AdminCreate creates a company directly as a live admin-managed record.
func (s *service) AdminCreate(ctx context.Context, actor auth.Actor, input RegisterCompanyInput) (*CompanyDTO, error) {
	return s.create(ctx, actor, input, enums.CompanyStatusAdminCreated)
}

func (s *service) create(ctx context.Context, actor auth.Actor, input RegisterCompanyInput, status enums.CompanyStatus) (*CompanyDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	if len(input.Categories) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one category is required")
	}
	categories := make([]string, 0, len(input.Categories))
	seen := make(map[enums.Category]struct{}, len(input.Categories))
	for _, category := range input.Categories {
		if !category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		if _, dup := seen[category]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate category")
		}
		seen[category] = struct{}{}
		categories = append(categories, string(category))
	}

	submittedBy := actor.UserID
	company := &models.Company{
		Name:             name,
		Website:          input.Website,
		ContactEmail:     input.ContactEmail,
		Description:      input.Description,
		LogoURL:          input.LogoURL,
		Categories:       categories,
		Status:           status,
		DefaultMarketing: marketing.Normalize(input.DefaultMarketing),
		SubmittedBy:      &submittedBy,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, company)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert company")
		}
		if status != enums.CompanyStatusPending {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCompanySubmitted,
			AggregateType: enums.AggregateCompany,
			AggregateID:   created.ID,
			Actor:         actorRef(actor),
			Data: payloads.CompanySubmittedEvent{
				CompanyID:  created.ID,
				Name:       created.Name,
				Status:     created.Status,
				Categories: append([]string{}, created.Categories...),
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create company")
	}

	return NewCompanyDTO(company), nil
}

// Get loads a single company.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.loadCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewCompanyDTO(company), nil
}

// List returns a page of companies for the admin review surface.
func (s *service) List(ctx context.Context, input ListCompaniesInput) (*CompanyListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid company status")
	}
	rows, hasMore, err := s.repo.List(ctx, ListQuery{
		Status: input.Status,
		Search: input.Search,
		Pagination: paginationParams(input.Limit, input.Cursor),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list companies")
	}

	result := &CompanyListResult{Companies: make([]CompanyDTO, len(rows))}
	for i := range rows {
		result.Companies[i] = *NewCompanyDTO(&rows[i])
	}
	if hasMore && len(rows) > 0 {
		cursor := nextCursor(rows[len(rows)-1])
		result.NextCursor = &cursor
	}
	return result, nil
}

// Approve moves a pending company to approved, optionally installing its
// default marketing data in the same write. The completeness flag is always
// recomputed from the normalized value.
func (s *service) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, marketingData *types.MarketingData) (*CompanyDTO, error) {
	company, err := s.loadCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	switch company.Status {
	case enums.CompanyStatusPending, enums.CompanyStatusClaimPending:
	case enums.CompanyStatusApproved:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "company already approved")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "company cannot be approved from its current status")
	}

	if marketingData != nil {
		company.DefaultMarketing = marketing.Normalize(marketingData)
	}
	now := timeNow()
	company.Status = enums.CompanyStatusApproved
	company.ApprovedBy = &actor.UserID
	company.ApprovedAt = &now
	company.RejectionReason = nil

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, company); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update company")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCompanyApproved,
			AggregateType: enums.AggregateCompany,
			AggregateID:   company.ID,
			Actor:         actorRef(actor),
			Data: payloads.CompanyApprovedEvent{
				CompanyID:  company.ID,
				Name:       company.Name,
				ApprovedBy: actor.UserID,
				ApprovedAt: now,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve company")
	}

	return NewCompanyDTO(company), nil
}

// Reject marks a company rejected with a mandatory reason. Rejecting an
// already rejected company is a no-op.
func (s *service) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CompanyDTO, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	company, err := s.loadCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.Status == enums.CompanyStatusRejected {
		return NewCompanyDTO(company), nil
	}
	if company.Status == enums.CompanyStatusConnected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "connected companies cannot be rejected")
	}

	company.Status = enums.CompanyStatusRejected
	company.RejectionReason = &trimmed

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, company); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update company")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCompanyRejected,
			AggregateType: enums.AggregateCompany,
			AggregateID:   company.ID,
			Actor:         actorRef(actor),
			Data: payloads.CompanyRejectedEvent{
				CompanyID:  company.ID,
				Name:       company.Name,
				RejectedBy: actor.UserID,
				Reason:     trimmed,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject company")
	}

	return NewCompanyDTO(company), nil
}

// Suspend freezes a live company. Its data stays but no longer backs new
// deal approvals.
func (s *service) Suspend(ctx context.Context, actor auth.Actor, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.loadCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	switch company.Status {
	case enums.CompanyStatusApproved, enums.CompanyStatusAdminCreated, enums.CompanyStatusClaimed:
	case enums.CompanyStatusSuspended:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "company already suspended")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only live companies can be suspended")
	}

	company.Status = enums.CompanyStatusSuspended
	if _, err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "suspend company")
	}
	return NewCompanyDTO(company), nil
}

// Reactivate recovers a suspended company to approved, or sends a rejected
// one back into the review queue.
func (s *service) Reactivate(ctx context.Context, actor auth.Actor, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.loadCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	switch company.Status {
	case enums.CompanyStatusSuspended:
		company.Status = enums.CompanyStatusApproved
	case enums.CompanyStatusRejected:
		company.Status = enums.CompanyStatusPending
		company.RejectionReason = nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "company is not suspended or rejected")
	}

	if _, err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate company")
	}
	return NewCompanyDTO(company), nil
}

// UpdateMarketing replaces the company's default marketing data. Approved
// deals are untouched; they carry their own snapshots.
func (s *service) UpdateMarketing(ctx context.Context, actor auth.Actor, id uuid.UUID, marketingData *types.MarketingData) (*CompanyDTO, error) {
	if marketingData == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "marketing data is required")
	}

	company, err := s.loadCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.OwnsCompany(company.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "company does not belong to actor")
	}
	if company.Status == enums.CompanyStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rejected companies are read-only")
	}

	company.DefaultMarketing = marketing.Normalize(marketingData)
	if _, err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update company marketing")
	}
	return NewCompanyDTO(company), nil
}

// MatchCandidates returns an advisory shortlist of admin-created companies
// that may be the same brand as the pending registration.
func (s *service) MatchCandidates(ctx context.Context, pendingID uuid.UUID) ([]MatchCandidateDTO, error) {
	pending, err := s.loadCompany(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != enums.CompanyStatusPending && pending.Status != enums.CompanyStatusClaimPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "merge candidates only apply to pending companies")
	}

	candidates, err := s.repo.ListByStatus(ctx, enums.CompanyStatusAdminCreated)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list candidate companies")
	}

	ranked := rankCandidates(pending, candidates)
	out := make([]MatchCandidateDTO, len(ranked))
	for i, candidate := range ranked {
		out[i] = MatchCandidateDTO{
			Company: NewCompanyDTO(candidate.Company),
			Score:   candidate.Score,
			Reasons: candidate.Reasons,
		}
	}
	return out, nil
}

// Merge connects a pending registration to an existing admin-created
// company. Marketing data stays on the primary record; the pending company
// becomes a pointer, never a copy.
func (s *service) Merge(ctx context.Context, actor auth.Actor, existingID, pendingID uuid.UUID, notes string) (*CompanyDTO, error) {
	if existingID == pendingID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot merge a company into itself")
	}

	existing, err := s.loadCompany(ctx, existingID)
	if err != nil {
		return nil, err
	}
	if existing.Status != enums.CompanyStatusAdminCreated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "merge target must be an admin-created company")
	}

	pending, err := s.loadCompany(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != enums.CompanyStatusPending && pending.Status != enums.CompanyStatusClaimPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending companies can be merged")
	}

	trimmedNotes := strings.TrimSpace(notes)
	pending.Status = enums.CompanyStatusConnected
	pending.ConnectedToCompanyID = &existing.ID
	if trimmedNotes != "" {
		pending.ConnectionNotes = &trimmedNotes
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, pending); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update company")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCompanyConnected,
			AggregateType: enums.AggregateCompany,
			AggregateID:   pending.ID,
			Actor:         actorRef(actor),
			Data: payloads.CompanyConnectedEvent{
				CompanyID:        pending.ID,
				PrimaryCompanyID: existing.ID,
				ConnectedBy:      actor.UserID,
				Notes:            trimmedNotes,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge company")
	}

	return NewCompanyDTO(pending), nil
}

func (s *service) loadCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return company, nil
}

func paginationParams(limit int, cursor string) pagination.Params {
	return pagination.Params{Limit: limit, Cursor: cursor}
}

func nextCursor(last models.Company) string {
	return pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}

func actorRef(actor auth.Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID:    actor.UserID,
		CompanyID: actor.CompanyID,
		Role:      string(actor.Role),
	}
}
