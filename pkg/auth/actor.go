package auth

import (
	"github.com/google/uuid"

	"github.com/koocao/reduzed-backend/pkg/enums"
)

// Actor is the authenticated principal performing a service operation,
// extracted from verified token claims by the middleware layer.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// ActorFromClaims converts verified claims into an Actor.
func ActorFromClaims(claims *AccessTokenClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		UserID:    claims.UserID,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// OwnsCompany reports whether the actor is bound to the given company.
func (a Actor) OwnsCompany(companyID uuid.UUID) bool {
	return a.CompanyID != nil && *a.CompanyID == companyID
}
