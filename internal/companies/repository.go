package companies

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/pagination"
)

// Repository wires together company persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new company row.
func (r *Repository) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// FindByID loads a company by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Update saves all fields of an existing company row.
func (r *Repository) Update(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// ListQuery filters the admin company listing.
type ListQuery struct {
	Status     *enums.CompanyStatus
	Search     string
	Pagination pagination.Params
}

// List returns companies newest first with cursor pagination. One extra row
// beyond the limit is fetched so the caller can tell whether more remain.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Company, bool, error) {
	limit := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, false, err
	}

	tx := r.db.WithContext(ctx).Model(&models.Company{})
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Company
	err = tx.Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	return rows, hasMore, nil
}

// ListByStatus returns all companies in the given statuses, oldest first.
// Used for the advisory merge-candidate scan over admin_created companies.
func (r *Repository) ListByStatus(ctx context.Context, statuses ...enums.CompanyStatus) ([]models.Company, error) {
	var rows []models.Company
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
