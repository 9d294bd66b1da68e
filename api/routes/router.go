package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koocao/reduzed-backend/api/controllers"
	"github.com/koocao/reduzed-backend/api/middleware"
	"github.com/koocao/reduzed-backend/internal/clicks"
	"github.com/koocao/reduzed-backend/internal/companies"
	"github.com/koocao/reduzed-backend/internal/deals"
	"github.com/koocao/reduzed-backend/internal/users"
	"github.com/koocao/reduzed-backend/pkg/config"
	"github.com/koocao/reduzed-backend/pkg/logger"
	"github.com/koocao/reduzed-backend/pkg/redis"
)

// Dependencies carries everything the router needs wired up front.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Redis        *redis.Client
	HealthChecks map[string]controllers.Pinger

	Companies companies.Service
	Deals     deals.Service
	Users     users.Service
	Clicks    clicks.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	redirectPolicy := middleware.NewRateLimitPolicy(
		"redirect",
		cfg.AuthRateLimit.RedirectWindow,
		cfg.AuthRateLimit.RedirectIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthChecks))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/deals", controllers.PublicDeals(deps.Deals, logg))
		r.Get("/deals/{dealId}", controllers.PublicDealGet(deps.Deals, logg))
		r.Get("/categories", controllers.PublicCategories())
	})

	r.With(middleware.RateLimit(redirectPolicy, deps.Redis, logg)).
		Get("/go/{dealId}", controllers.DealRedirect(deps.Clicks, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/companies", func(r chi.Router) {
			r.With(middleware.RateLimit(registerPolicy, deps.Redis, logg)).
				Post("/", controllers.CompanyRegister(deps.Companies, logg))
			r.Get("/{companyId}", controllers.CompanyGet(deps.Companies, logg))
			r.Put("/{companyId}/marketing", controllers.CompanyUpdateMarketing(deps.Companies, logg))
		})

		r.Route("/deals", func(r chi.Router) {
			r.Post("/", controllers.DealCreate(deps.Deals, logg))
			r.Get("/", controllers.DealList(deps.Deals, logg))
			r.Get("/{dealId}", controllers.DealGet(deps.Deals, logg))
			r.Patch("/{dealId}", controllers.DealUpdate(deps.Deals, logg))
			r.Post("/{dealId}/submit", controllers.DealSubmit(deps.Deals, logg))
			r.Put("/{dealId}/marketing-override", controllers.DealSetOverride(deps.Deals, logg))
			r.Delete("/{dealId}/marketing-override", controllers.DealClearOverride(deps.Deals, logg))
			r.Get("/{dealId}/marketing-resolution", controllers.DealResolveMarketing(deps.Deals, logg))
			r.Post("/{dealId}/archive", controllers.DealArchive(deps.Deals, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", controllers.AdminCompanyList(deps.Companies, logg))
				r.Post("/", controllers.AdminCompanyCreate(deps.Companies, logg))
				r.Post("/{companyId}/approve", controllers.AdminCompanyApprove(deps.Companies, logg))
				r.Post("/{companyId}/reject", controllers.AdminCompanyReject(deps.Companies, logg))
				r.Post("/{companyId}/suspend", controllers.AdminCompanySuspend(deps.Companies, logg))
				r.Post("/{companyId}/reactivate", controllers.AdminCompanyReactivate(deps.Companies, logg))
				r.Get("/{companyId}/matches", controllers.AdminCompanyMatches(deps.Companies, logg))
				r.Post("/{companyId}/merge", controllers.AdminCompanyMerge(deps.Companies, logg))
			})

			r.Route("/deals", func(r chi.Router) {
				r.Post("/{dealId}/approve", controllers.AdminDealApprove(deps.Deals, logg))
				r.Post("/{dealId}/reject", controllers.AdminDealReject(deps.Deals, logg))
			})

			r.Route("/admin-deals", func(r chi.Router) {
				r.Post("/", controllers.AdminDealCreate(deps.Deals, logg))
				r.Get("/", controllers.AdminDealList(deps.Deals, logg))
				r.Patch("/{dealId}", controllers.AdminDealUpdate(deps.Deals, logg))
				r.Post("/{dealId}/archive", controllers.AdminDealArchive(deps.Deals, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/invite", controllers.AdminUserInvite(deps.Users, logg))
				r.Get("/", controllers.AdminUserList(deps.Users, logg))
				r.Get("/{userId}", controllers.AdminUserGet(deps.Users, logg))
				r.Post("/{userId}/deactivate", controllers.AdminUserDeactivate(deps.Users, logg))
				r.Post("/{userId}/activate", controllers.AdminUserActivate(deps.Users, logg))
			})
		})
	})

	return r
}
