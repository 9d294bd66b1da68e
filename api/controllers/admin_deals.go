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

type adminDealCreateRequest struct {
	CompanyID     *uuid.UUID           `json:"company_id,omitempty"`
	Title         string               `json:"title" validate:"required,min=3,max=160"`
	Description   *string              `json:"description,omitempty"`
	Category      string               `json:"category" validate:"required"`
	DiscountValue decimal.Decimal      `json:"discount_value" validate:"required"`
	DiscountType  string               `json:"discount_type" validate:"required"`
	Marketing     marketingDataRequest `json:"marketing" validate:"required"`
	StartsAt      *time.Time           `json:"starts_at,omitempty"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty"`
}

func (r adminDealCreateRequest) toInput() (deals.CreateAdminDealInput, error) {
	category, err := enums.ParseCategory(r.Category)
	if err != nil {
		return deals.CreateAdminDealInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	discountType := enums.DiscountType(r.DiscountType)
	if !discountType.IsValid() {
		return deals.CreateAdminDealInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}

	marketing := r.Marketing.toMarketing()
	return deals.CreateAdminDealInput{
		CompanyID:     r.CompanyID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      category,
		DiscountValue: r.DiscountValue,
		DiscountType:  discountType,
		Marketing:     *marketing,
		StartsAt:      r.StartsAt,
		ExpiresAt:     r.ExpiresAt,
	}, nil
}

// AdminDealCreate publishes a house deal directly, bypassing review.
// Marketing data must be complete up front.
func AdminDealCreate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminDealCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.CreateAdminDeal(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

type adminDealUpdateRequest struct {
	Title         *string               `json:"title,omitempty" validate:"omitempty,min=3,max=160"`
	Description   *string               `json:"description,omitempty"`
	Category      *string               `json:"category,omitempty"`
	DiscountValue *decimal.Decimal      `json:"discount_value,omitempty"`
	DiscountType  *string               `json:"discount_type,omitempty"`
	Marketing     *marketingDataRequest `json:"marketing,omitempty"`
	StartsAt      *time.Time            `json:"starts_at,omitempty"`
	ExpiresAt     *time.Time            `json:"expires_at,omitempty"`
}

func (r adminDealUpdateRequest) toInput() (deals.UpdateAdminDealInput, error) {
	input := deals.UpdateAdminDealInput{
		Title:         r.Title,
		Description:   r.Description,
		DiscountValue: r.DiscountValue,
		Marketing:     r.Marketing.toMarketing(),
		StartsAt:      r.StartsAt,
		ExpiresAt:     r.ExpiresAt,
	}

	if r.Category != nil {
		category, err := enums.ParseCategory(*r.Category)
		if err != nil {
			return deals.UpdateAdminDealInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}

	if r.DiscountType != nil {
		discountType := enums.DiscountType(*r.DiscountType)
		if !discountType.IsValid() {
			return deals.UpdateAdminDealInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
		}
		input.DiscountType = &discountType
	}

	return input, nil
}

// AdminDealUpdate edits a live house deal in place.
func AdminDealUpdate(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload adminDealUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.UpdateAdminDeal(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// AdminDealArchive retires a house deal.
func AdminDealArchive(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
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

		deal, err := svc.ArchiveAdminDeal(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// AdminDealList returns every house deal, optionally including archived ones.
func AdminDealList(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeArchived, err := validators.ParseQueryBool(r, "include_archived")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAdminDeals(r.Context(), includeArchived != nil && *includeArchived)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deals": result})
	}
}
