package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
)

// CatalogRepository stores the service catalog
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: tx}
}

func (r *CatalogRepository) Create(ctx context.Context, svc *domain.CatalogService) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *CatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CatalogService, error) {
	var svc domain.CatalogService
	if err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *CatalogRepository) Update(ctx context.Context, svc *domain.CatalogService) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

func (r *CatalogRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.CatalogService{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// List returns services ordered by category and name
func (r *CatalogRepository) List(ctx context.Context, activeOnly bool, search string) ([]domain.CatalogService, error) {
	var services []domain.CatalogService
	query := r.db.WithContext(ctx).Model(&domain.CatalogService{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if search != "" {
		p := likePattern(search)
		query = query.Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(category) LIKE ?"+likeEscape, p, p)
	}
	err := query.Order("category ASC, name ASC").Find(&services).Error
	return services, err
}
