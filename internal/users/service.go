package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/internal/companies"
	"github.com/koocao/reduzed-backend/pkg/config"
	"github.com/koocao/reduzed-backend/pkg/db"
	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/security"
)

const tempPasswordLength = 16

// Service exposes user administration operations. There is no self-service
// signup; admins invite every account.
type Service interface {
	Invite(ctx context.Context, input InviteUserInput) (*InviteResult, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, input ListUsersInput) ([]UserDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

// InviteUserInput holds the validated payload to invite a user.
type InviteUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// ListUsersInput filters the user listing.
type ListUsersInput struct {
	Role      *enums.UserRole
	CompanyID *uuid.UUID
	Active    *bool
}

type service struct {
	repo      *Repository
	companies *companies.Repository
	password  config.PasswordConfig
}

// NewService constructs a user service instance.
func NewService(repo *Repository, companyRepo *companies.Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if companyRepo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	return &service{repo: repo, companies: companyRepo, password: password}, nil
}

// Invite creates an account with a generated temporary password. The
// password is returned once for out-of-band delivery.
func (s *service) Invite(ctx context.Context, input InviteUserInput) (*InviteResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	switch input.Role {
	case enums.UserRoleBroker:
		if input.CompanyID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "broker accounts require a company")
		}
		if _, err := s.companies.FindByID(ctx, *input.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
		}
	case enums.UserRoleAdmin:
		if input.CompanyID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin accounts carry no company")
		}
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         input.Role,
		CompanyID:    input.CompanyID,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a user with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return &InviteResult{User: *NewUserDTO(created), TempPassword: tempPassword}, nil
}

// Get loads a single user.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewUserDTO(user), nil
}

// List returns users matching the filter.
func (s *service) List(ctx context.Context, input ListUsersInput) ([]UserDTO, error) {
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	rows, err := s.repo.List(ctx, ListQuery{
		Role:      input.Role,
		CompanyID: input.CompanyID,
		Active:    input.Active,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	out := make([]UserDTO, len(rows))
	for i := range rows {
		out[i] = *NewUserDTO(&rows[i])
	}
	return out, nil
}

// Deactivate locks an account out without deleting its history.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user already deactivated")
	}

	user.IsActive = false
	if _, err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
	}
	return NewUserDTO(user), nil
}

// Activate restores a deactivated account.
func (s *service) Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user already active")
	}

	user.IsActive = true
	if _, err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate user")
	}
	return NewUserDTO(user), nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
