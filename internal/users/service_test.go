package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/internal/companies"
	"github.com/koocao/reduzed-backend/pkg/config"
	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	pkgerrors "github.com/koocao/reduzed-backend/pkg/errors"
	"github.com/koocao/reduzed-backend/pkg/security"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS companies (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  website TEXT,
  contact_email TEXT,
  description TEXT,
  logo_url TEXT,
  categories TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  default_marketing TEXT,
  connected_to_company_id TEXT,
  connection_notes TEXT,
  rejection_reason TEXT,
  submitted_by TEXT,
  approved_by TEXT,
  approved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(6)))),
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL,
  company_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_logged_in_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func setupUserService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	gormDB := setupUserTestDB(t)
	svc, err := NewService(NewRepository(gormDB), companies.NewRepository(gormDB), config.PasswordConfig{})
	require.NoError(t, err)
	return svc, gormDB
}

func seedUserCompany(t *testing.T, db *gorm.DB) *models.Company {
	t.Helper()
	company := &models.Company{
		ID:         uuid.New(),
		Name:       "FTMO",
		Categories: []string{string(enums.CategoryPropTrading)},
		Status:     enums.CompanyStatusAdminCreated,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func TestInviteBrokerRequiresCompany(t *testing.T) {
	svc, gormDB := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Invite(ctx, InviteUserInput{
		Email:     "broker@ftmo.com",
		FirstName: "Jan",
		LastName:  "Novak",
		Role:      enums.UserRoleBroker,
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	missing := uuid.New()
	_, err = svc.Invite(ctx, InviteUserInput{
		Email:     "broker@ftmo.com",
		FirstName: "Jan",
		LastName:  "Novak",
		Role:      enums.UserRoleBroker,
		CompanyID: &missing,
	})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	company := seedUserCompany(t, gormDB)
	result, err := svc.Invite(ctx, InviteUserInput{
		Email:     " Broker@FTMO.com ",
		FirstName: "Jan",
		LastName:  "Novak",
		Role:      enums.UserRoleBroker,
		CompanyID: &company.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "broker@ftmo.com", result.User.Email)
	require.Equal(t, company.ID, *result.User.CompanyID)
	require.True(t, result.User.IsActive)
	require.NotEmpty(t, result.TempPassword)

	// The returned password verifies against the stored hash.
	var stored models.User
	require.NoError(t, gormDB.First(&stored, "id = ?", result.User.ID).Error)
	ok, err := security.VerifyPassword(result.TempPassword, stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInviteAdminCarriesNoCompany(t *testing.T) {
	svc, gormDB := setupUserService(t)
	ctx := context.Background()

	company := seedUserCompany(t, gormDB)
	_, err := svc.Invite(ctx, InviteUserInput{
		Email:     "admin@koocao.com",
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      enums.UserRoleAdmin,
		CompanyID: &company.ID,
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	result, err := svc.Invite(ctx, InviteUserInput{
		Email:     "admin@koocao.com",
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	require.Nil(t, result.User.CompanyID)
}

func TestInviteRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	input := InviteUserInput{
		Email:     "admin@koocao.com",
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      enums.UserRoleAdmin,
	}
	_, err := svc.Invite(ctx, input)
	require.NoError(t, err)

	_, err = svc.Invite(ctx, input)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestActivationLifecycle(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	result, err := svc.Invite(ctx, InviteUserInput{
		Email:     "admin@koocao.com",
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	id := result.User.ID

	dto, err := svc.Deactivate(ctx, id)
	require.NoError(t, err)
	require.False(t, dto.IsActive)

	_, err = svc.Deactivate(ctx, id)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	dto, err = svc.Activate(ctx, id)
	require.NoError(t, err)
	require.True(t, dto.IsActive)
}

func TestListFiltersByRoleAndActive(t *testing.T) {
	svc, gormDB := setupUserService(t)
	ctx := context.Background()

	company := seedUserCompany(t, gormDB)
	_, err := svc.Invite(ctx, InviteUserInput{
		Email: "admin@koocao.com", FirstName: "Ada", LastName: "Admin", Role: enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	result, err := svc.Invite(ctx, InviteUserInput{
		Email: "broker@ftmo.com", FirstName: "Jan", LastName: "Novak",
		Role: enums.UserRoleBroker, CompanyID: &company.ID,
	})
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, result.User.ID)
	require.NoError(t, err)

	brokerRole := enums.UserRoleBroker
	listed, err := svc.List(ctx, ListUsersInput{Role: &brokerRole})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "broker@ftmo.com", listed[0].Email)

	active := true
	listed, err = svc.List(ctx, ListUsersInput{Active: &active})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "admin@koocao.com", listed[0].Email)
}
