package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/api/middleware"
	"github.com/koocao/reduzed-backend/pkg/auth"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
)

// actorFromRequest rebuilds the authenticated actor from the context seeded
// by the auth middleware.
func actorFromRequest(r *http.Request) (auth.Actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return auth.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	actor := auth.Actor{
		UserID: uid,
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}

	if companyID := middleware.CompanyIDFromContext(r.Context()); companyID != "" {
		cid, err := uuid.Parse(companyID)
		if err != nil {
			return auth.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid company id")
		}
		actor.CompanyID = &cid
	}

	return actor, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
