package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/api/middleware"
	"github.com/koocao/reduzed-backend/internal/companies"
	"github.com/koocao/reduzed-backend/pkg/auth"
	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/logger"
	"github.com/koocao/reduzed-backend/pkg/types"
)

type stubCompanyService struct {
	registered *companies.RegisterCompanyInput
	approved   *uuid.UUID
	marketing  *types.MarketingData
}

func (s *stubCompanyService) Register(_ context.Context, _ auth.Actor, input companies.RegisterCompanyInput) (*companies.CompanyDTO, error) {
	s.registered = &input
	return &companies.CompanyDTO{ID: uuid.New(), Name: input.Name, Status: string(enums.CompanyStatusPending)}, nil
}

func (s *stubCompanyService) AdminCreate(context.Context, auth.Actor, companies.RegisterCompanyInput) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) Get(context.Context, uuid.UUID) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) List(context.Context, companies.ListCompaniesInput) (*companies.CompanyListResult, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) Approve(_ context.Context, _ auth.Actor, id uuid.UUID, marketingData *types.MarketingData) (*companies.CompanyDTO, error) {
	s.approved = &id
	s.marketing = marketingData
	return &companies.CompanyDTO{ID: id, Status: string(enums.CompanyStatusApproved)}, nil
}

func (s *stubCompanyService) Reject(context.Context, auth.Actor, uuid.UUID, string) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) Suspend(context.Context, auth.Actor, uuid.UUID) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) Reactivate(context.Context, auth.Actor, uuid.UUID) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) UpdateMarketing(context.Context, auth.Actor, uuid.UUID, *types.MarketingData) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) MatchCandidates(context.Context, uuid.UUID) ([]companies.MatchCandidateDTO, error) {
	panic("unimplemented")
}

func (s *stubCompanyService) Merge(context.Context, auth.Actor, uuid.UUID, uuid.UUID, string) (*companies.CompanyDTO, error) {
	panic("unimplemented")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func actorContext(role enums.UserRole) context.Context {
	ctx := middleware.WithUserID(context.Background(), uuid.NewString())
	return middleware.WithRole(ctx, string(role))
}

func TestCompanyRegister(t *testing.T) {
	logg := testLogger()

	t.Run("missing user context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		CompanyRegister(&stubCompanyService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{"name":"FTMO","categories":["prop_trading"],"bogus":true}`))
		req = req.WithContext(actorContext(enums.UserRoleBroker))
		rec := httptest.NewRecorder()
		CompanyRegister(&stubCompanyService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{"name":"FTMO","categories":["not-a-category"]}`))
		req = req.WithContext(actorContext(enums.UserRoleBroker))
		rec := httptest.NewRecorder()
		CompanyRegister(&stubCompanyService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubCompanyService{}
		body := `{"name":"FTMO","website":"https://ftmo.com","categories":["prop_trading"],"default_marketing":{"affiliate_link":"https://ftmo.com/ref","coupon_code":"SAVE10"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(body))
		req = req.WithContext(actorContext(enums.UserRoleBroker))
		rec := httptest.NewRecorder()
		CompanyRegister(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.registered == nil {
			t.Fatal("expected service invoked")
		}
		if stub.registered.DefaultMarketing == nil || stub.registered.DefaultMarketing.CouponCode != "SAVE10" {
			t.Fatalf("expected marketing forwarded, got %+v", stub.registered.DefaultMarketing)
		}
		var envelope struct {
			Data companies.CompanyDTO `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.Data.Status != string(enums.CompanyStatusPending) {
			t.Fatalf("expected pending status, got %s", envelope.Data.Status)
		}
	})
}

func TestAdminCompanyApprove(t *testing.T) {
	logg := testLogger()
	companyID := uuid.New()

	withRoute := func(ctx context.Context, id string) context.Context {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("companyId", id)
		return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}

	t.Run("invalid company id", func(t *testing.T) {
		ctx := withRoute(actorContext(enums.UserRoleAdmin), "not-a-uuid")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/companies/not-a-uuid/approve", nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminCompanyApprove(&stubCompanyService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("approve without body", func(t *testing.T) {
		stub := &stubCompanyService{}
		ctx := withRoute(actorContext(enums.UserRoleAdmin), companyID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/companies/"+companyID.String()+"/approve", nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminCompanyApprove(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.approved == nil || *stub.approved != companyID {
			t.Fatal("expected approve invoked with company id")
		}
		if stub.marketing != nil {
			t.Fatalf("expected no marketing payload, got %+v", stub.marketing)
		}
	})

	t.Run("approve with marketing data", func(t *testing.T) {
		stub := &stubCompanyService{}
		ctx := withRoute(actorContext(enums.UserRoleAdmin), companyID.String())
		body := `{"marketing_data":{"affiliate_link":"https://ftmo.com/ref","coupon_code":"SAVE10"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/companies/"+companyID.String()+"/approve", strings.NewReader(body))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		AdminCompanyApprove(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.marketing == nil || stub.marketing.AffiliateLink != "https://ftmo.com/ref" {
			t.Fatalf("expected marketing forwarded, got %+v", stub.marketing)
		}
	})
}
