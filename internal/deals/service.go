package deals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/internal/companies"
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

// Service exposes the deal lifecycle: broker drafts through the approval
// gate, admin-authored deals, and the consumer listing.
type Service interface {
	CreateDraft(ctx context.Context, actor auth.Actor, input CreateBrokerDealInput) (*BrokerDealDTO, error)
	UpdateDraft(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateBrokerDealInput) (*BrokerDealDTO, error)
	Submit(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error)
	SetOverride(ctx context.Context, actor auth.Actor, id uuid.UUID, override *types.MarketingData) (*BrokerDealDTO, error)
	ClearOverride(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error)
	ResolveMarketing(ctx context.Context, id uuid.UUID) (*ResolutionDTO, error)
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*BrokerDealDTO, error)
	Archive(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error)
	List(ctx context.Context, actor auth.Actor, input ListBrokerDealsInput) (*BrokerDealListResult, error)

	CreateAdminDeal(ctx context.Context, actor auth.Actor, input CreateAdminDealInput) (*AdminDealDTO, error)
	UpdateAdminDeal(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateAdminDealInput) (*AdminDealDTO, error)
	ArchiveAdminDeal(ctx context.Context, actor auth.Actor, id uuid.UUID) (*AdminDealDTO, error)
	ListAdminDeals(ctx context.Context, includeArchived bool) ([]AdminDealDTO, error)

	ListLiveDeals(ctx context.Context, input ListLiveDealsInput) (*PublicDealListResult, error)
	GetLiveDeal(ctx context.Context, id uuid.UUID) (*PublicDealDTO, error)
}

// CreateBrokerDealInput holds the validated payload to create a draft deal.
type CreateBrokerDealInput struct {
	CompanyID         uuid.UUID
	Title             string
	Description       *string
	Category          enums.Category
	DiscountValue     decimal.Decimal
	DiscountType      enums.DiscountType
	MarketingOverride *types.MarketingData
	StartsAt          *time.Time
	ExpiresAt         *time.Time
}

// UpdateBrokerDealInput carries partial edits to a draft. Nil fields keep
// their current value.
type UpdateBrokerDealInput struct {
	Title         *string
	Description   *string
	Category      *enums.Category
	DiscountValue *decimal.Decimal
	DiscountType  *enums.DiscountType
	StartsAt      *time.Time
	ExpiresAt     *time.Time
}

// ListBrokerDealsInput filters the broker deal listing.
type ListBrokerDealsInput struct {
	CompanyID *uuid.UUID
	Status    *enums.DealStatus
	Category  *enums.Category
	Search    string
	Limit     int
	Cursor    string
}

// ListLiveDealsInput filters the public live-deal listing.
type ListLiveDealsInput struct {
	Category *enums.Category
	Search   string
	Limit    int
	Cursor   string
}

// CreateAdminDealInput holds the validated payload for an admin deal.
type CreateAdminDealInput struct {
	CompanyID     *uuid.UUID
	Title         string
	Description   *string
	Category      enums.Category
	DiscountValue decimal.Decimal
	DiscountType  enums.DiscountType
	Marketing     types.MarketingData
	StartsAt      *time.Time
	ExpiresAt     *time.Time
}

// UpdateAdminDealInput carries partial edits to an admin deal.
type UpdateAdminDealInput struct {
	Title         *string
	Description   *string
	Category      *enums.Category
	DiscountValue *decimal.Decimal
	DiscountType  *enums.DiscountType
	Marketing     *types.MarketingData
	StartsAt      *time.Time
	ExpiresAt     *time.Time
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

var timeNow = time.Now

const maxPercentageDiscount = 100

type service struct {
	repo      *Repository
	companies *companies.Repository
	dbClient  *db.Client
	events    eventEmitter
}

// NewService constructs a deal service instance.
func NewService(repo *Repository, companyRepo *companies.Repository, dbClient *db.Client, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deal repository required")
	}
	if companyRepo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, companies: companyRepo, dbClient: dbClient, events: events}, nil
}

// CreateDraft creates a broker deal in draft. Brokers can only create deals
// for their own company.
func (s *service) CreateDraft(ctx context.Context, actor auth.Actor, input CreateBrokerDealInput) (*BrokerDealDTO, error) {
	if !actor.IsAdmin() && !actor.OwnsCompany(input.CompanyID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "deal company does not belong to actor")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal title is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if err := validateDiscount(input.DiscountValue, input.DiscountType); err != nil {
		return nil, err
	}
	if err := validateSchedule(input.StartsAt, input.ExpiresAt); err != nil {
		return nil, err
	}

	if _, err := s.companies.FindByID(ctx, input.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}

	deal := &models.BrokerDeal{
		CompanyID:       input.CompanyID,
		Title:           title,
		Description:     input.Description,
		Category:        input.Category,
		Status:          enums.DealStatusDraft,
		DiscountValue:   input.DiscountValue,
		DiscountType:    input.DiscountType,
		MarketingSource: enums.MarketingSourceInherited,
		SubmittedBy:     actor.UserID,
		StartsAt:        input.StartsAt,
		ExpiresAt:       input.ExpiresAt,
	}
	if input.MarketingOverride != nil {
		now := timeNow()
		deal.MarketingOverride = marketing.Normalize(input.MarketingOverride)
		deal.MarketingSource = enums.MarketingSourceOverride
		deal.OverriddenAt = &now
		deal.OverriddenBy = &actor.UserID
	}

	created, err := s.repo.CreateBrokerDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
	}
	return NewBrokerDealDTO(created), nil
}

// UpdateDraft edits a deal that has not yet entered review. Rejected deals
// may also be edited before resubmission.
func (s *service) UpdateDraft(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateBrokerDealInput) (*BrokerDealDTO, error) {
	deal, err := s.loadDealForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if deal.Status != enums.DealStatusDraft && deal.Status != enums.DealStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft or rejected deals can be edited")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal title is required")
		}
		deal.Title = title
	}
	if input.Description != nil {
		deal.Description = input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		deal.Category = *input.Category
	}
	if input.DiscountValue != nil {
		deal.DiscountValue = *input.DiscountValue
	}
	if input.DiscountType != nil {
		deal.DiscountType = *input.DiscountType
	}
	if err := validateDiscount(deal.DiscountValue, deal.DiscountType); err != nil {
		return nil, err
	}
	if input.StartsAt != nil {
		deal.StartsAt = input.StartsAt
	}
	if input.ExpiresAt != nil {
		deal.ExpiresAt = input.ExpiresAt
	}
	if err := validateSchedule(deal.StartsAt, deal.ExpiresAt); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateBrokerDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal")
	}
	return NewBrokerDealDTO(updated), nil
}

// Submit moves a draft or rejected deal into the review queue.
func (s *service) Submit(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error) {
	deal, err := s.loadDealForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if deal.Status != enums.DealStatusDraft && deal.Status != enums.DealStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft or rejected deals can be submitted")
	}

	now := timeNow()
	deal.Status = enums.DealStatusPendingApproval
	deal.SubmittedAt = &now
	deal.RejectionReason = nil

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateBrokerDeal(ctx, deal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update deal")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDealSubmitted,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Actor:         actorRef(actor),
			Data: payloads.DealSubmittedEvent{
				DealID:      deal.ID,
				CompanyID:   deal.CompanyID,
				Title:       deal.Title,
				Category:    deal.Category,
				SubmittedBy: actor.UserID,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit deal")
	}

	return NewBrokerDealDTO(deal), nil
}

// SetOverride installs explicit marketing data on a deal. Approved deals are
// frozen; their snapshot never changes after the fact.
func (s *service) SetOverride(ctx context.Context, actor auth.Actor, id uuid.UUID, override *types.MarketingData) (*BrokerDealDTO, error) {
	if override == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "marketing override is required")
	}
	deal, err := s.loadDealForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.DealStatusApproved || deal.Status == enums.DealStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "approved deals carry a frozen snapshot")
	}

	now := timeNow()
	deal.MarketingOverride = marketing.Normalize(override)
	deal.MarketingSource = enums.MarketingSourceOverride
	deal.OverriddenAt = &now
	deal.OverriddenBy = &actor.UserID

	updated, err := s.repo.UpdateBrokerDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set deal override")
	}
	return NewBrokerDealDTO(updated), nil
}

// ClearOverride drops the explicit marketing data and returns the deal to
// inheriting from its company.
func (s *service) ClearOverride(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error) {
	deal, err := s.loadDealForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.DealStatusApproved || deal.Status == enums.DealStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "approved deals carry a frozen snapshot")
	}

	deal.MarketingOverride = nil
	deal.MarketingSource = enums.MarketingSourceInherited
	deal.OverriddenAt = nil
	deal.OverriddenBy = nil

	updated, err := s.repo.UpdateBrokerDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear deal override")
	}
	return NewBrokerDealDTO(updated), nil
}

// ResolveMarketing previews the effective marketing for a deal in review.
// An approved deal reports its frozen snapshot, not a fresh resolution.
func (s *service) ResolveMarketing(ctx context.Context, id uuid.UUID) (*ResolutionDTO, error) {
	deal, err := s.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.DealStatusApproved && deal.ResolvedMarketing != nil {
		snap := deal.ResolvedMarketing
		return &ResolutionDTO{
			AffiliateLink:      snap.AffiliateLink,
			CouponCode:         snap.CouponCode,
			TrackingParameters: snap.TrackingParameters,
			Source:             string(deal.MarketingSource),
			Complete:           true,
			MissingFields:      []string{},
		}, nil
	}

	res, err := s.resolveAgainstCompany(ctx, deal)
	if err != nil {
		return nil, err
	}
	return NewResolutionDTO(*res), nil
}

// Approve runs the gate: the deal goes live only if marketing resolution is
// complete. The resolved values are frozen onto the deal in the same
// transaction as the status change.
func (s *service) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error) {
	deal, err := s.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	switch deal.Status {
	case enums.DealStatusPendingApproval:
	case enums.DealStatusApproved:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal already approved")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only deals pending approval can be approved")
	}

	res, err := s.resolveAgainstCompany(ctx, deal)
	if err != nil {
		return nil, err
	}
	if !res.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal marketing data is incomplete").
			WithDetails(map[string]any{"missing_fields": res.MissingFields})
	}

	now := timeNow()
	deal.Status = enums.DealStatusApproved
	deal.ApprovedBy = &actor.UserID
	deal.ApprovedAt = &now
	deal.RejectionReason = nil
	deal.ResolvedMarketing = res.Snapshot()
	deal.MarketingSource = res.Source

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateBrokerDeal(ctx, deal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update deal")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDealApproved,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Actor:         actorRef(actor),
			Data: payloads.DealApprovedEvent{
				DealID:          deal.ID,
				CompanyID:       deal.CompanyID,
				Title:           deal.Title,
				MarketingSource: deal.MarketingSource,
				ApprovedBy:      actor.UserID,
				ApprovedAt:      now,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve deal")
	}

	return NewBrokerDealDTO(deal), nil
}

// Reject sends a deal back to its broker with a mandatory reason. Rejecting
// an already rejected deal is a no-op.
func (s *service) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*BrokerDealDTO, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	deal, err := s.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.DealStatusRejected {
		return NewBrokerDealDTO(deal), nil
	}
	if deal.Status != enums.DealStatusPendingApproval {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only deals pending approval can be rejected")
	}

	deal.Status = enums.DealStatusRejected
	deal.RejectionReason = &trimmed

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateBrokerDeal(ctx, deal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update deal")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDealRejected,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Actor:         actorRef(actor),
			Data: payloads.DealRejectedEvent{
				DealID:     deal.ID,
				CompanyID:  deal.CompanyID,
				RejectedBy: actor.UserID,
				Reason:     trimmed,
			},
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject deal")
	}

	return NewBrokerDealDTO(deal), nil
}

// Archive retires a deal from every surface. The frozen snapshot stays on
// the row for click history.
func (s *service) Archive(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error) {
	deal, err := s.loadDealForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.DealStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal already archived")
	}

	deal.Status = enums.DealStatusArchived
	updated, err := s.repo.UpdateBrokerDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive deal")
	}
	return NewBrokerDealDTO(updated), nil
}

// Get loads a single deal visible to the actor.
func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*BrokerDealDTO, error) {
	deal, err := s.loadDealForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return NewBrokerDealDTO(deal), nil
}

// List returns a page of broker deals. Brokers are always scoped to their
// own company regardless of the filter they send.
func (s *service) List(ctx context.Context, actor auth.Actor, input ListBrokerDealsInput) (*BrokerDealListResult, error) {
	companyID := input.CompanyID
	if !actor.IsAdmin() {
		if actor.CompanyID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "actor has no company")
		}
		companyID = actor.CompanyID
	}

	rows, hasMore, err := s.repo.ListBrokerDeals(ctx, BrokerDealQuery{
		CompanyID:  companyID,
		Status:     input.Status,
		Category:   input.Category,
		Search:     input.Search,
		Pagination: pagination.Params{Limit: input.Limit, Cursor: input.Cursor},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals")
	}

	result := &BrokerDealListResult{Deals: make([]BrokerDealDTO, len(rows))}
	for i := range rows {
		result.Deals[i] = *NewBrokerDealDTO(&rows[i])
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &cursor
	}
	return result, nil
}

// CreateAdminDeal creates a live admin-authored deal. Its marketing data
// must be complete up front; there is no review queue for admins.
func (s *service) CreateAdminDeal(ctx context.Context, actor auth.Actor, input CreateAdminDealInput) (*AdminDealDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal title is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if err := validateDiscount(input.DiscountValue, input.DiscountType); err != nil {
		return nil, err
	}
	if err := validateSchedule(input.StartsAt, input.ExpiresAt); err != nil {
		return nil, err
	}
	normalized := marketing.Normalize(&input.Marketing)
	if !normalized.IsComplete {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin deals require complete marketing data")
	}

	deal := &models.AdminDeal{
		CompanyID:     input.CompanyID,
		Title:         title,
		Description:   input.Description,
		Category:      input.Category,
		Status:        enums.AdminDealStatusActive,
		DiscountValue: input.DiscountValue,
		DiscountType:  input.DiscountType,
		Marketing:     *normalized,
		CreatedBy:     actor.UserID,
		StartsAt:      input.StartsAt,
		ExpiresAt:     input.ExpiresAt,
	}

	created, err := s.repo.CreateAdminDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin deal")
	}
	return NewAdminDealDTO(created), nil
}

// UpdateAdminDeal edits an admin deal in place. Marketing data must stay
// complete after the edit.
func (s *service) UpdateAdminDeal(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateAdminDealInput) (*AdminDealDTO, error) {
	deal, err := s.loadAdminDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.AdminDealStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "archived deals are read-only")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal title is required")
		}
		deal.Title = title
	}
	if input.Description != nil {
		deal.Description = input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		deal.Category = *input.Category
	}
	if input.DiscountValue != nil {
		deal.DiscountValue = *input.DiscountValue
	}
	if input.DiscountType != nil {
		deal.DiscountType = *input.DiscountType
	}
	if err := validateDiscount(deal.DiscountValue, deal.DiscountType); err != nil {
		return nil, err
	}
	if input.Marketing != nil {
		normalized := marketing.Normalize(input.Marketing)
		if !normalized.IsComplete {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin deals require complete marketing data")
		}
		deal.Marketing = *normalized
	}
	if input.StartsAt != nil {
		deal.StartsAt = input.StartsAt
	}
	if input.ExpiresAt != nil {
		deal.ExpiresAt = input.ExpiresAt
	}
	if err := validateSchedule(deal.StartsAt, deal.ExpiresAt); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAdminDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update admin deal")
	}
	return NewAdminDealDTO(updated), nil
}

// ArchiveAdminDeal retires an admin deal from the public listing.
func (s *service) ArchiveAdminDeal(ctx context.Context, actor auth.Actor, id uuid.UUID) (*AdminDealDTO, error) {
	deal, err := s.loadAdminDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.Status == enums.AdminDealStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deal already archived")
	}

	deal.Status = enums.AdminDealStatusArchived
	updated, err := s.repo.UpdateAdminDeal(ctx, deal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive admin deal")
	}
	return NewAdminDealDTO(updated), nil
}

// ListAdminDeals returns the admin-authored deals for the admin surface.
func (s *service) ListAdminDeals(ctx context.Context, includeArchived bool) ([]AdminDealDTO, error) {
	rows, err := s.repo.ListAdminDeals(ctx, includeArchived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admin deals")
	}
	out := make([]AdminDealDTO, len(rows))
	for i := range rows {
		out[i] = *NewAdminDealDTO(&rows[i])
	}
	return out, nil
}

// ListLiveDeals merges approved broker deals and active admin deals into the
// consumer listing, newest first. The two sources are fetched separately and
// merged in memory, so the cursor is applied to the merged ordering.
func (s *service) ListLiveDeals(ctx context.Context, input ListLiveDealsInput) (*PublicDealListResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Limit)
	now := timeNow()

	brokerDeals, err := s.repo.ListLiveBrokerDeals(ctx, input.Category, input.Search, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list live broker deals")
	}
	adminDeals, err := s.repo.ListLiveAdminDeals(ctx, input.Category, input.Search, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list live admin deals")
	}

	type datedDeal struct {
		dto    PublicDealDTO
		liveAt time.Time
	}
	merged := make([]datedDeal, 0, len(brokerDeals)+len(adminDeals))
	for i := range brokerDeals {
		liveAt := brokerDeals[i].CreatedAt
		if brokerDeals[i].ApprovedAt != nil {
			liveAt = *brokerDeals[i].ApprovedAt
		}
		merged = append(merged, datedDeal{dto: *NewPublicBrokerDealDTO(&brokerDeals[i]), liveAt: liveAt})
	}
	for i := range adminDeals {
		merged = append(merged, datedDeal{dto: *NewPublicAdminDealDTO(&adminDeals[i]), liveAt: adminDeals[i].CreatedAt})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].liveAt.Equal(merged[j].liveAt) {
			return merged[i].liveAt.After(merged[j].liveAt)
		}
		return merged[i].dto.ID.String() < merged[j].dto.ID.String()
	})

	start := 0
	if cursor != nil {
		for i := range merged {
			if merged[i].liveAt.Before(cursor.CreatedAt) {
				start = i
				break
			}
			if merged[i].liveAt.Equal(cursor.CreatedAt) && merged[i].dto.ID.String() > cursor.ID.String() {
				start = i
				break
			}
			start = len(merged)
		}
	}

	page := merged[start:]
	result := &PublicDealListResult{Deals: make([]PublicDealDTO, 0, limit)}
	for i := range page {
		if i == limit {
			last := page[i-1]
			next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.liveAt, ID: last.dto.ID})
			result.NextCursor = &next
			break
		}
		result.Deals = append(result.Deals, page[i].dto)
	}
	return result, nil
}

// GetLiveDeal returns the consumer-facing view of a single deal. Deals that
// are not currently live answer not-found regardless of why.
func (s *service) GetLiveDeal(ctx context.Context, id uuid.UUID) (*PublicDealDTO, error) {
	now := timeNow()

	brokerDeal, err := s.repo.FindBrokerDealByID(ctx, id)
	switch {
	case err == nil:
		if brokerDeal.Status != enums.DealStatusApproved || !liveWindow(brokerDeal.StartsAt, brokerDeal.ExpiresAt, now) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal is not live")
		}
		return NewPublicBrokerDealDTO(brokerDeal), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}

	adminDeal, err := s.repo.FindAdminDealByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if adminDeal.Status != enums.AdminDealStatusActive || !liveWindow(adminDeal.StartsAt, adminDeal.ExpiresAt, now) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal is not live")
	}
	return NewPublicAdminDealDTO(adminDeal), nil
}

func liveWindow(startsAt, expiresAt *time.Time, now time.Time) bool {
	if startsAt != nil && startsAt.After(now) {
		return false
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return false
	}
	return true
}

func (s *service) loadDeal(ctx context.Context, id uuid.UUID) (*models.BrokerDeal, error) {
	deal, err := s.repo.FindBrokerDealByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	return deal, nil
}

func (s *service) loadDealForActor(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.BrokerDeal, error) {
	deal, err := s.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.OwnsCompany(deal.CompanyID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "deal does not belong to actor")
	}
	return deal, nil
}

func (s *service) loadAdminDeal(ctx context.Context, id uuid.UUID) (*models.AdminDeal, error) {
	deal, err := s.repo.FindAdminDealByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin deal")
	}
	return deal, nil
}

// resolveAgainstCompany loads the deal's company and runs marketing
// resolution. A missing company resolves as if there were no inheritable
// default.
func (s *service) resolveAgainstCompany(ctx context.Context, deal *models.BrokerDeal) (*marketing.Resolution, error) {
	company, err := s.companies.FindByID(ctx, deal.CompanyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal company")
	}
	res := marketing.Resolve(deal, company)
	return &res, nil
}

func validateDiscount(value decimal.Decimal, discountType enums.DiscountType) error {
	if !discountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}
	if discountType == enums.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(maxPercentageDiscount)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	return nil
}

func validateSchedule(startsAt, expiresAt *time.Time) error {
	if startsAt != nil && expiresAt != nil && !expiresAt.After(*startsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "deal must expire after it starts")
	}
	return nil
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
