package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/internal/clicks"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
)

type stubClickService struct {
	dealID   uuid.UUID
	meta     clicks.ClickMeta
	redirect *clicks.Redirect
	err      error
}

func (s *stubClickService) ResolveRedirect(_ context.Context, dealID uuid.UUID, meta clicks.ClickMeta) (*clicks.Redirect, error) {
	s.dealID = dealID
	s.meta = meta
	if s.err != nil {
		return nil, s.err
	}
	return s.redirect, nil
}

func redirectRequest(t *testing.T, dealID string, modify func(*http.Request)) *http.Request {
	t.Helper()
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("dealId", dealID)
	req := httptest.NewRequest(http.MethodGet, "/go/"+dealID, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	if modify != nil {
		modify(req)
	}
	return req
}

func TestDealRedirect(t *testing.T) {
	logg := testLogger()

	t.Run("invalid deal id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DealRedirect(&stubClickService{}, logg).ServeHTTP(rec, redirectRequest(t, "not-a-uuid", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("unknown deal", func(t *testing.T) {
		stub := &stubClickService{err: pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")}
		rec := httptest.NewRecorder()
		DealRedirect(stub, logg).ServeHTTP(rec, redirectRequest(t, uuid.NewString(), nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})

	t.Run("redirects and forwards click metadata", func(t *testing.T) {
		dealID := uuid.New()
		stub := &stubClickService{redirect: &clicks.Redirect{URL: "https://ftmo.com/ref?c=SAVE10", DealID: dealID}}
		req := redirectRequest(t, dealID.String(), func(r *http.Request) {
			r.Header.Set("Referer", "https://reduzed.com/deals")
			r.Header.Set("User-Agent", "test-agent")
			r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		})
		rec := httptest.NewRecorder()
		DealRedirect(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302 got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("Location"); got != "https://ftmo.com/ref?c=SAVE10" {
			t.Fatalf("unexpected location %q", got)
		}
		if stub.dealID != dealID {
			t.Fatalf("expected deal id forwarded, got %s", stub.dealID)
		}
		if stub.meta.Referrer != "https://reduzed.com/deals" || stub.meta.UserAgent != "test-agent" {
			t.Fatalf("unexpected click meta %+v", stub.meta)
		}
		if stub.meta.ClientIP != "203.0.113.9" {
			t.Fatalf("expected first forwarded ip, got %q", stub.meta.ClientIP)
		}
	})
}

func TestRequestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/go/x", nil)
	req.RemoteAddr = "192.0.2.1:5123"
	if got := requestClientIP(req); got != "192.0.2.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	req.Header.Set("X-Real-IP", "198.51.100.7")
	if got := requestClientIP(req); got != "198.51.100.7" {
		t.Fatalf("expected real ip header, got %q", got)
	}
}
