package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
)

// CustomerFilter narrows customer lists; zero values impose no constraint
type CustomerFilter struct {
	Search string
	Status domain.CustomerStatus
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Exists reports whether a customer row exists
func (r *CustomerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit("Vehicles").Save(customer).Error
}

// Delete removes the customer; vehicles cascade
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Customer{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// List searches name, phone, email and tax id
func (r *CustomerRepository) List(ctx context.Context, filter CustomerFilter, page Page) ([]domain.Customer, int64, error) {
	var customers []domain.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Customer{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(name) LIKE ?"+likeEscape+" OR LOWER(phone) LIKE ?"+likeEscape+
				" OR LOWER(email) LIKE ?"+likeEscape+" OR LOWER(tax_id) LIKE ?"+likeEscape,
			p, p, p, p,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(query).Order("created_at DESC").Find(&customers).Error
	return customers, total, err
}

// Count returns the number of customers with the given status, or all when empty
func (r *CustomerRepository) Count(ctx context.Context, status domain.CustomerStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Customer{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

// AddServiceTotals bumps the aggregated counters kept on the customer row
func (r *CustomerRepository) AddServiceTotals(ctx context.Context, id uuid.UUID, services int, spent decimal.Decimal) error {
	updates := map[string]interface{}{
		"total_services": gorm.Expr("total_services + ?", services),
		"total_spent":    gorm.Expr("total_spent + ?", spent.StringFixed(2)),
		"updated_at":     gorm.Expr("CURRENT_TIMESTAMP"),
	}
	return r.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", id).Updates(updates).Error
}
