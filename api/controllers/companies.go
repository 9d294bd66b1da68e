package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/api/responses"
	"github.com/koocao/reduzed-backend/api/validators"
	"github.com/koocao/reduzed-backend/internal/companies"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/logger"
	"github.com/koocao/reduzed-backend/pkg/types"
)

type marketingDataRequest struct {
	AffiliateLink      string            `json:"affiliate_link"`
	CouponCode         string            `json:"coupon_code"`
	TrackingParameters map[string]string `json:"tracking_parameters,omitempty"`
	ConversionPixel    *string           `json:"conversion_pixel,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
}

func (m *marketingDataRequest) toMarketing() *types.MarketingData {
	if m == nil {
		return nil
	}
	return &types.MarketingData{
		AffiliateLink:      m.AffiliateLink,
		CouponCode:         m.CouponCode,
		TrackingParameters: m.TrackingParameters,
		ConversionPixel:    m.ConversionPixel,
		Notes:              m.Notes,
	}
}

type companyRegisterRequest struct {
	Name             string                `json:"name" validate:"required,min=2,max=120"`
	Website          *string               `json:"website,omitempty" validate:"omitempty,url"`
	ContactEmail     *string               `json:"contact_email,omitempty" validate:"omitempty,email"`
	Description      *string               `json:"description,omitempty"`
	LogoURL          *string               `json:"logo_url,omitempty" validate:"omitempty,url"`
	Categories       []string              `json:"categories" validate:"required,min=1,dive,required"`
	DefaultMarketing *marketingDataRequest `json:"default_marketing,omitempty"`
}

func (r companyRegisterRequest) toInput() (companies.RegisterCompanyInput, error) {
	categories := make([]enums.Category, 0, len(r.Categories))
	for _, raw := range r.Categories {
		category, err := enums.ParseCategory(raw)
		if err != nil {
			return companies.RegisterCompanyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		categories = append(categories, category)
	}

	return companies.RegisterCompanyInput{
		Name:             r.Name,
		Website:          r.Website,
		ContactEmail:     r.ContactEmail,
		Description:      r.Description,
		LogoURL:          r.LogoURL,
		Categories:       categories,
		DefaultMarketing: r.DefaultMarketing.toMarketing(),
	}, nil
}

// CompanyRegister submits a new company into the review queue.
func CompanyRegister(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload companyRegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Register(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, company)
	}
}

// CompanyGet returns a single company profile.
func CompanyGet(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}

type companyMarketingRequest struct {
	DefaultMarketing marketingDataRequest `json:"default_marketing" validate:"required"`
}

// CompanyUpdateMarketing replaces the company's default marketing data.
// Brokers may only touch their own company.
func CompanyUpdateMarketing(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload companyMarketingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.UpdateMarketing(r.Context(), actor, id, payload.DefaultMarketing.toMarketing())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}

// AdminCompanyList returns the paginated admin view over companies.
func AdminCompanyList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := companies.ListCompaniesInput{
			Search: r.URL.Query().Get("search"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseCompanyStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminCompanyCreate seeds a company that skips the review queue.
func AdminCompanyCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload companyRegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.AdminCreate(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, company)
	}
}

type companyApproveRequest struct {
	MarketingData *marketingDataRequest `json:"marketing_data,omitempty"`
}

// AdminCompanyApprove moves a company out of the review queue, optionally
// installing default marketing data in the same step.
func AdminCompanyApprove(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload companyApproveRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		company, err := svc.Approve(r.Context(), actor, id, payload.MarketingData.toMarketing())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// AdminCompanyReject declines a pending company with a mandatory reason.
func AdminCompanyReject(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Reject(r.Context(), actor, id, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}

// AdminCompanySuspend freezes a live company.
func AdminCompanySuspend(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Suspend(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}

// AdminCompanyReactivate recovers a suspended or rejected company.
func AdminCompanyReactivate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Reactivate(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}

// AdminCompanyMatches lists likely duplicates among admin-created companies
// for a pending registration.
func AdminCompanyMatches(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matches, err := svc.MatchCandidates(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"candidates": matches})
	}
}

type companyMergeRequest struct {
	PendingCompanyID uuid.UUID `json:"pending_company_id" validate:"required"`
	Notes            string    `json:"notes,omitempty" validate:"max=500"`
}

// AdminCompanyMerge connects a pending registration to an existing
// admin-created company instead of approving it as a new brand.
func AdminCompanyMerge(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existingID, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload companyMergeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Merge(r.Context(), actor, existingID, payload.PendingCompanyID, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, company)
	}
}
