package clicks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/internal/deals"
	"github.com/koocao/reduzed-backend/pkg/db"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/outbox"
	"github.com/koocao/reduzed-backend/pkg/outbox/payloads"
	"github.com/koocao/reduzed-backend/pkg/types"
)

var timeNow = time.Now

// Service resolves deal redirects and records click events. The affiliate
// link a consumer is sent to always comes from frozen data: the approval
// snapshot for broker deals, the stored marketing for admin deals.
type Service interface {
	ResolveRedirect(ctx context.Context, dealID uuid.UUID, meta ClickMeta) (*Redirect, error)
}

// ClickMeta carries the request attributes recorded with a click.
type ClickMeta struct {
	Referrer  string
	UserAgent string
	ClientIP  string
}

// Redirect is the resolved destination for a deal click.
type Redirect struct {
	URL       string
	DealID    uuid.UUID
	DealKind  string
	CompanyID *uuid.UUID
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	deals    *deals.Repository
	dbClient *db.Client
	events   eventEmitter
}

// NewService constructs a click service instance.
func NewService(dealRepo *deals.Repository, dbClient *db.Client, events eventEmitter) (Service, error) {
	if dealRepo == nil {
		return nil, fmt.Errorf("deal repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{deals: dealRepo, dbClient: dbClient, events: events}, nil
}

// ResolveRedirect finds the live deal behind the id, builds the outbound
// affiliate URL with tracking parameters appended, and queues the click
// event in the same transaction boundary used for every domain event.
func (s *service) ResolveRedirect(ctx context.Context, dealID uuid.UUID, meta ClickMeta) (*Redirect, error) {
	now := timeNow()

	redirect, md, err := s.resolveDeal(ctx, dealID, now)
	if err != nil {
		return nil, err
	}

	target, err := buildRedirectURL(md.AffiliateLink, md.TrackingParameters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build redirect url")
	}
	redirect.URL = target

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDealClick,
			AggregateType: enums.AggregateDeal,
			AggregateID:   dealID,
			Actor:         nil,
			Data: payloads.DealClickEvent{
				DealID:    dealID,
				CompanyID: redirect.CompanyID,
				DealKind:  redirect.DealKind,
				Referrer:  meta.Referrer,
				UserAgent: meta.UserAgent,
				ClientIP:  meta.ClientIP,
				ClickedAt: now,
			},
		})
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record click")
	}

	return redirect, nil
}

// resolveDeal checks the id against broker deals first, then admin deals.
func (s *service) resolveDeal(ctx context.Context, dealID uuid.UUID, now time.Time) (*Redirect, *types.MarketingData, error) {
	brokerDeal, err := s.deals.FindBrokerDealByID(ctx, dealID)
	switch {
	case err == nil:
		if brokerDeal.Status != enums.DealStatusApproved || !withinWindow(brokerDeal.StartsAt, brokerDeal.ExpiresAt, now) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal is not live")
		}
		if brokerDeal.ResolvedMarketing == nil || strings.TrimSpace(brokerDeal.ResolvedMarketing.AffiliateLink) == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal has no destination")
		}
		return &Redirect{
			DealID:    dealID,
			DealKind:  deals.DealKindBroker,
			CompanyID: &brokerDeal.CompanyID,
		}, brokerDeal.ResolvedMarketing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}

	adminDeal, err := s.deals.FindAdminDealByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if adminDeal.Status != enums.AdminDealStatusActive || !withinWindow(adminDeal.StartsAt, adminDeal.ExpiresAt, now) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal is not live")
	}
	if strings.TrimSpace(adminDeal.Marketing.AffiliateLink) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal has no destination")
	}
	return &Redirect{
		DealID:    dealID,
		DealKind:  deals.DealKindAdmin,
		CompanyID: adminDeal.CompanyID,
	}, &adminDeal.Marketing, nil
}

func withinWindow(startsAt, expiresAt *time.Time, now time.Time) bool {
	if startsAt != nil && now.Before(*startsAt) {
		return false
	}
	if expiresAt != nil && !now.Before(*expiresAt) {
		return false
	}
	return true
}

// buildRedirectURL appends tracking parameters to the affiliate link.
// Parameters already present on the link are left alone.
func buildRedirectURL(link string, params map[string]string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("affiliate link %q is not absolute", link)
	}
	if len(params) == 0 {
		return parsed.String(), nil
	}

	query := parsed.Query()
	for key, value := range params {
		if key == "" || query.Has(key) {
			continue
		}
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
