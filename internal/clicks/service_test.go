package clicks

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/internal/deals"
	"github.com/koocao/reduzed-backend/internal/marketing"
	"github.com/koocao/reduzed-backend/pkg/db"
	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/outbox"
	"github.com/koocao/reduzed-backend/pkg/outbox/payloads"
	"github.com/koocao/reduzed-backend/pkg/types"
)

type captureEmitter struct {
	events []outbox.DomainEvent
}

func (c *captureEmitter) Emit(_ context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if tx == nil {
		panic("emit outside transaction")
	}
	c.events = append(c.events, event)
	return nil
}

func setupClickTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS broker_deals (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  discount_value NUMERIC NOT NULL,
  discount_type TEXT NOT NULL,
  marketing_source TEXT NOT NULL DEFAULT 'inherited',
  marketing_override TEXT,
  overridden_at DATETIME,
  overridden_by TEXT,
  resolved_marketing TEXT,
  submitted_by TEXT NOT NULL,
  submitted_at DATETIME,
  approved_by TEXT,
  approved_at DATETIME,
  rejection_reason TEXT,
  starts_at DATETIME,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS admin_deals (
  id TEXT PRIMARY KEY,
  company_id TEXT,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  discount_value NUMERIC NOT NULL,
  discount_type TEXT NOT NULL,
  marketing TEXT NOT NULL,
  created_by TEXT NOT NULL,
  starts_at DATETIME,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, gormDB.Exec(schema).Error)
	return gormDB
}

func setupClickService(t *testing.T) (Service, *captureEmitter, *gorm.DB) {
	t.Helper()

	gormDB := setupClickTestDB(t)
	emitter := &captureEmitter{}
	svc, err := NewService(deals.NewRepository(gormDB), db.NewWithConn(gormDB), emitter)
	require.NoError(t, err)
	return svc, emitter, gormDB
}

func seedApprovedBrokerDeal(t *testing.T, gormDB *gorm.DB, md *types.MarketingData) *models.BrokerDeal {
	t.Helper()
	approvedAt := time.Now().Add(-time.Hour)
	deal := &models.BrokerDeal{
		ID:                uuid.New(),
		CompanyID:         uuid.New(),
		Title:             "20% off challenge",
		Category:          enums.CategoryPropTrading,
		Status:            enums.DealStatusApproved,
		DiscountValue:     decimal.NewFromInt(20),
		DiscountType:      enums.DiscountTypePercentage,
		MarketingSource:   enums.MarketingSourceInherited,
		ResolvedMarketing: marketing.Normalize(md),
		SubmittedBy:       uuid.New(),
		ApprovedAt:        &approvedAt,
	}
	require.NoError(t, gormDB.Create(deal).Error)
	return deal
}

func TestResolveRedirectAppendsTrackingParams(t *testing.T) {
	svc, emitter, gormDB := setupClickService(t)

	deal := seedApprovedBrokerDeal(t, gormDB, &types.MarketingData{
		AffiliateLink:      "https://ftmo.com/ref/koocao?existing=keep",
		CouponCode:         "KOOCAO10",
		TrackingParameters: map[string]string{"utm_source": "koocao", "existing": "ignored"},
	})

	redirect, err := svc.ResolveRedirect(context.Background(), deal.ID, ClickMeta{
		Referrer:  "https://koocao.com/deals",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	require.Equal(t, deals.DealKindBroker, redirect.DealKind)

	parsed, err := url.Parse(redirect.URL)
	require.NoError(t, err)
	require.Equal(t, "ftmo.com", parsed.Host)
	require.Equal(t, "koocao", parsed.Query().Get("utm_source"))
	// Existing query parameters are never clobbered.
	require.Equal(t, "keep", parsed.Query().Get("existing"))

	require.Len(t, emitter.events, 1)
	event := emitter.events[0]
	require.Equal(t, enums.EventDealClick, event.EventType)
	click, ok := event.Data.(payloads.DealClickEvent)
	require.True(t, ok)
	require.Equal(t, deal.ID, click.DealID)
	require.Equal(t, "https://koocao.com/deals", click.Referrer)
}

func TestResolveRedirectRejectsNonLiveDeals(t *testing.T) {
	svc, emitter, gormDB := setupClickService(t)
	ctx := context.Background()

	_, err := svc.ResolveRedirect(ctx, uuid.New(), ClickMeta{})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	expired := seedApprovedBrokerDeal(t, gormDB, &types.MarketingData{
		AffiliateLink: "https://ftmo.com/ref/koocao",
		CouponCode:    "KOOCAO10",
	})
	past := time.Now().Add(-time.Minute)
	require.NoError(t, gormDB.Model(expired).Update("expires_at", past).Error)

	_, err = svc.ResolveRedirect(ctx, expired.ID, ClickMeta{})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	require.Empty(t, emitter.events)
}

func TestResolveRedirectServesAdminDeals(t *testing.T) {
	svc, emitter, gormDB := setupClickService(t)

	adminDeal := &models.AdminDeal{
		ID:            uuid.New(),
		Title:         "Flat $50 off",
		Category:      enums.CategoryCrypto,
		Status:        enums.AdminDealStatusActive,
		DiscountValue: decimal.NewFromInt(50),
		DiscountType:  enums.DiscountTypeFixed,
		Marketing: types.MarketingData{
			AffiliateLink: "https://partner.example/promo",
			CouponCode:    "SAVE50",
			IsComplete:    true,
		},
		CreatedBy: uuid.New(),
	}
	require.NoError(t, gormDB.Create(adminDeal).Error)

	redirect, err := svc.ResolveRedirect(context.Background(), adminDeal.ID, ClickMeta{})
	require.NoError(t, err)
	require.Equal(t, deals.DealKindAdmin, redirect.DealKind)
	require.True(t, strings.HasPrefix(redirect.URL, "https://partner.example/promo"))
	require.Len(t, emitter.events, 1)
}

func TestBuildRedirectURLRejectsRelativeLinks(t *testing.T) {
	_, err := buildRedirectURL("/not-absolute", nil)
	require.Error(t, err)
}
