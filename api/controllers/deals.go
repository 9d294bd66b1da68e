package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koocao/reduzed-backend/api/responses"
	"github.com/koocao/reduzed-backend/api/validators"
	"github.com/koocao/reduzed-backend/internal/deals"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/logger"
)

type dealCreateRequest struct {
	CompanyID         uuid.UUID             `json:"company_id" validate:"required"`
	Title             string                `json:"title" validate:"required,min=3,max=160"`
	Description       *string               `json:"description,omitempty"`
	Category          string                `json:"category" validate:"required"`
	DiscountValue     decimal.Decimal       `json:"discount_value" validate:"required"`
	DiscountType      string                `json:"discount_type" validate:"required"`
	MarketingOverride *marketingDataRequest `json:"marketing_override,omitempty"`
	StartsAt          *time.Time            `json:"starts_at,omitempty"`
	ExpiresAt         *time.Time            `json:"expires_at,omitempty"`
}

func (r dealCreateRequest) toInput() (deals.CreateBrokerDealInput, error) {
	category, err := enums.ParseCategory(r.Category)
	if err != nil {
		return deals.CreateBrokerDealInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	discountType := enums.DiscountType(r.DiscountType)
	if !discountType.IsValid() {
		return deals.CreateBrokerDealInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}

	return deals.CreateBrokerDealInput{
		CompanyID:         r.CompanyID,
		Title:             r.Title,
		Description:       r.Description,
		Category:          category,
		DiscountValue:     r.DiscountValue,
		DiscountType:      discountType,
		MarketingOverride: r.MarketingOverride.toMarketing(),
		StartsAt:          r.StartsAt,
		ExpiresAt:         r.ExpiresAt,
	}, nil
}

// DealCreate opens a new draft deal for the broker's company.
func DealCreate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dealCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.CreateDraft(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

type dealUpdateRequest struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,min=3,max=160"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	DiscountType  *string          `json:"discount_type,omitempty"`
	StartsAt      *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

func (r dealUpdateRequest) toInput() (deals.UpdateBrokerDealInput, error) {
	input := deals.UpdateBrokerDealInput{
		Title:         r.Title,
		Description:   r.Description,
		DiscountValue: r.DiscountValue,
		StartsAt:      r.StartsAt,
		ExpiresAt:     r.ExpiresAt,
	}

	if r.Category != nil {
		category, err := enums.ParseCategory(*r.Category)
		if err != nil {
			return deals.UpdateBrokerDealInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}

	if r.DiscountType != nil {
		discountType := enums.DiscountType(*r.DiscountType)
		if !discountType.IsValid() {
			return deals.UpdateBrokerDealInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
		}
		input.DiscountType = &discountType
	}

	return input, nil
}

// DealUpdate edits a draft or rejected deal in place.
func DealUpdate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dealUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.UpdateDraft(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealSubmit moves a draft or rejected deal into the review queue.
func DealSubmit(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Submit(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

type dealOverrideRequest struct {
	MarketingOverride marketingDataRequest `json:"marketing_override" validate:"required"`
}

// DealSetOverride installs deal-level marketing data that shadows the
// company default during resolution.
func DealSetOverride(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dealOverrideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.SetOverride(r.Context(), actor, id, payload.MarketingOverride.toMarketing())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealClearOverride drops the override so the deal inherits again.
func DealClearOverride(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.ClearOverride(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealResolveMarketing previews the marketing data a deal would go live
// with, including which fields are still missing.
func DealResolveMarketing(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.ResolveMarketing(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolution)
	}
}

// DealGet returns a single deal visible to the actor.
func DealGet(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealList returns the paginated deal listing. Brokers always see their own
// company only.
func DealList(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := deals.ListBrokerDealsInput{
			Search: r.URL.Query().Get("search"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		if raw := r.URL.Query().Get("company_id"); raw != "" {
			companyID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid company_id"))
				return
			}
			input.CompanyID = &companyID
		}

		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseDealStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		if raw := r.URL.Query().Get("category"); raw != "" {
			category, parseErr := enums.ParseCategory(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid category"))
				return
			}
			input.Category = &category
		}

		result, err := svc.List(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DealArchive retires a deal from every surface.
func DealArchive(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Archive(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// AdminDealApprove publishes a pending deal. Approval fails while the
// resolved marketing data is incomplete.
func AdminDealApprove(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Approve(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// AdminDealReject bounces a pending deal back to its broker with a reason.
func AdminDealReject(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Reject(r.Context(), actor, id, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}
