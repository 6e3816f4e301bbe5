package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a decrement would drop stock below zero
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryFilter narrows inventory lists; zero values impose no constraint
type InventoryFilter struct {
	Search   string
	Category string
	LowStock bool
	Sort     string
}

// inventorySorts maps API sort keys to ORDER BY clauses
var inventorySorts = map[string]string{
	"name":       "name ASC",
	"name-desc":  "name DESC",
	"stock-low":  "current_stock ASC, name ASC",
	"stock-high": "current_stock DESC, name ASC",
	"price-low":  "unit_price ASC, name ASC",
	"price-high": "unit_price DESC, name ASC",
	"updated":    "updated_at DESC",
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) WithTx(tx *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.InventoryItem{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// List searches name, code, description, category and supplier
func (r *InventoryRepository) List(ctx context.Context, filter InventoryFilter, page Page) ([]domain.InventoryItem, int64, error) {
	var items []domain.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.InventoryItem{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(name) LIKE ?"+likeEscape+" OR LOWER(code) LIKE ?"+likeEscape+
				" OR LOWER(description) LIKE ?"+likeEscape+" OR LOWER(category) LIKE ?"+likeEscape+
				" OR LOWER(supplier) LIKE ?"+likeEscape,
			p, p, p, p, p,
		)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		query = query.Where("current_stock <= minimum_stock")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(query).Order(orderClause(filter.Sort, inventorySorts, "name ASC")).Find(&items).Error
	return items, total, err
}

// ListLowStock returns every item at or below its minimum, emptiest first
func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := r.db.WithContext(ctx).
		Where("current_stock <= minimum_stock").
		Order("current_stock ASC, name ASC").
		Find(&items).Error
	return items, err
}

// AdjustStock adds delta to current stock. A negative delta that would leave
// the item below zero updates nothing and returns ErrInsufficientStock.
func (r *InventoryRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	query := r.db.WithContext(ctx).Model(&domain.InventoryItem{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("current_stock >= ?", -delta)
	}
	result := query.Updates(map[string]interface{}{
		"current_stock": gorm.Expr("current_stock + ?", delta),
		"updated_at":    time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.InventoryItem{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}
