package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/koocao/reduzed-backend/api/responses"
	"github.com/koocao/reduzed-backend/api/validators"
	"github.com/koocao/reduzed-backend/internal/clicks"
	"github.com/koocao/reduzed-backend/internal/deals"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/logger"
)

// PublicDeals lists live deals for the consumer surface. No auth, no
// affiliate links in the payload.
func PublicDeals(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := deals.ListLiveDealsInput{
			Search: r.URL.Query().Get("search"),
			Cursor: r.URL.Query().Get("cursor"),
		}
		if raw := r.URL.Query().Get("category"); raw != "" {
			parsed, err := enums.ParseCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &parsed
		}
		limit, err := validators.ParseQueryInt(r, "limit", 25, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Limit = limit

		result, err := svc.ListLiveDeals(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PublicDealGet returns the consumer view of one live deal.
func PublicDealGet(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.GetLiveDeal(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// PublicCategories lists the marketplace verticals the frontend filters on.
func PublicCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"categories": enums.Categories()})
	}
}

// DealRedirect resolves a live deal to its affiliate destination, records
// the click, and answers with a 302.
func DealRedirect(svc clicks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redirect, err := svc.ResolveRedirect(r.Context(), id, clicks.ClickMeta{
			Referrer:  r.Referer(),
			UserAgent: r.UserAgent(),
			ClientIP:  requestClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.Redirect(w, r, redirect.URL, http.StatusFound)
	}
}

func requestClientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
