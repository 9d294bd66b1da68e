package deals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koocao/reduzed-backend/pkg/db/models"
	"github.com/koocao/reduzed-backend/pkg/enums"
	"github.com/koocao/reduzed-backend/pkg/pagination"
)

// Repository wires together persistence for broker and admin deals.
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

// CreateBrokerDeal inserts a new broker deal row.
func (r *Repository) CreateBrokerDeal(ctx context.Context, deal *models.BrokerDeal) (*models.BrokerDeal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// FindBrokerDealByID loads a broker deal by primary key.
func (r *Repository) FindBrokerDealByID(ctx context.Context, id uuid.UUID) (*models.BrokerDeal, error) {
	var deal models.BrokerDeal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateBrokerDeal saves all fields of an existing broker deal row.
func (r *Repository) UpdateBrokerDeal(ctx context.Context, deal *models.BrokerDeal) (*models.BrokerDeal, error) {
	if err := r.db.WithContext(ctx).Save(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// BrokerDealQuery filters the broker deal listing.
type BrokerDealQuery struct {
	CompanyID  *uuid.UUID
	Status     *enums.DealStatus
	Category   *enums.Category
	Search     string
	Pagination pagination.Params
}

// ListBrokerDeals returns broker deals newest first with cursor pagination.
func (r *Repository) ListBrokerDeals(ctx context.Context, query BrokerDealQuery) ([]models.BrokerDeal, bool, error) {
	limit := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, false, err
	}

	tx := r.db.WithContext(ctx).Model(&models.BrokerDeal{})
	if query.CompanyID != nil {
		tx = tx.Where("company_id = ?", *query.CompanyID)
	}
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if query.Category != nil {
		tx = tx.Where("category = ?", *query.Category)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.BrokerDeal
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

// ListLiveBrokerDeals returns approved, unexpired broker deals for the public
// surface, optionally filtered by category and title search.
func (r *Repository) ListLiveBrokerDeals(ctx context.Context, category *enums.Category, search string, now time.Time) ([]models.BrokerDeal, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", enums.DealStatusApproved).
		Where("(starts_at IS NULL OR starts_at <= ?)", now).
		Where("(expires_at IS NULL OR expires_at > ?)", now)
	if category != nil {
		tx = tx.Where("category = ?", *category)
	}
	if search = strings.TrimSpace(search); search != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var rows []models.BrokerDeal
	err := tx.Order("approved_at DESC").Find(&rows).Error
	return rows, err
}

// CreateAdminDeal inserts a new admin deal row.
func (r *Repository) CreateAdminDeal(ctx context.Context, deal *models.AdminDeal) (*models.AdminDeal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// FindAdminDealByID loads an admin deal by primary key.
func (r *Repository) FindAdminDealByID(ctx context.Context, id uuid.UUID) (*models.AdminDeal, error) {
	var deal models.AdminDeal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateAdminDeal saves all fields of an existing admin deal row.
func (r *Repository) UpdateAdminDeal(ctx context.Context, deal *models.AdminDeal) (*models.AdminDeal, error) {
	if err := r.db.WithContext(ctx).Save(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// ListLiveAdminDeals returns active, unexpired admin deals, optionally
// filtered by category and title search.
func (r *Repository) ListLiveAdminDeals(ctx context.Context, category *enums.Category, search string, now time.Time) ([]models.AdminDeal, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", enums.AdminDealStatusActive).
		Where("(starts_at IS NULL OR starts_at <= ?)", now).
		Where("(expires_at IS NULL OR expires_at > ?)", now)
	if category != nil {
		tx = tx.Where("category = ?", *category)
	}
	if search = strings.TrimSpace(search); search != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var rows []models.AdminDeal
	err := tx.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ListAdminDeals returns admin deals newest first, optionally including
// archived ones.
func (r *Repository) ListAdminDeals(ctx context.Context, includeArchived bool) ([]models.AdminDeal, error) {
	tx := r.db.WithContext(ctx).Model(&models.AdminDeal{})
	if !includeArchived {
		tx = tx.Where("status = ?", enums.AdminDealStatusActive)
	}

	var rows []models.AdminDeal
	err := tx.Order("created_at DESC").Find(&rows).Error
	return rows, err
}
