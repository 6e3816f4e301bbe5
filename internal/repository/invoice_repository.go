package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceFilter narrows invoice lists; zero values impose no constraint
type InvoiceFilter struct {
	Status     domain.InvoiceStatus
	Type       domain.InvoiceType
	CustomerID *uuid.UUID
	// From and To bound the issue date, inclusive
	From *time.Time
	To   *time.Time
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error
}

// GetByID returns the invoice with customer, creator and work order (vehicle and lines)
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("CreatedBy").
		Preload("WorkOrder").
		Preload("WorkOrder.Vehicle").
		Preload("WorkOrder.Services.Service").
		Preload("WorkOrder.Parts.Item").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetHeader returns the invoice row, locked for update on PostgreSQL
func (r *InvoiceRepository) GetHeader(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateFields writes only the given columns and stamps updated_at
func (r *InvoiceRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// ListByWorkOrder returns the invoices of a work order, newest first
func (r *InvoiceRepository) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("CreatedBy").
		Where("work_order_id = ?", workOrderID).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// CountByWorkOrder returns how many invoices reference a work order
func (r *InvoiceRepository) CountByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("work_order_id = ?", workOrderID).Count(&count).Error
	return count, err
}

// List returns invoices newest first
func (r *InvoiceRepository) List(ctx context.Context, filter InvoiceFilter, page Page) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.filtered(ctx, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(query).
		Preload("Customer").
		Preload("CreatedBy").
		Preload("WorkOrder").
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, total, err
}

// ListAll returns every invoice matching filter, oldest issue date first
func (r *InvoiceRepository) ListAll(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.filtered(ctx, filter).
		Preload("Customer").
		Preload("WorkOrder").
		Order("issue_date ASC, created_at ASC").
		Find(&invoices).Error
	return invoices, err
}

// ListByStatuses returns invoices in any of the statuses, optionally bounded by paid_at
func (r *InvoiceRepository) ListByStatuses(ctx context.Context, statuses []domain.InvoiceStatus, paidFrom, paidTo *time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	query := r.db.WithContext(ctx).Where("status IN ?", statuses)
	if paidFrom != nil {
		query = query.Where("paid_at >= ?", *paidFrom)
	}
	if paidTo != nil {
		query = query.Where("paid_at <= ?", *paidTo)
	}
	err := query.Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}

// ListPaidByCustomer returns the customer's paid invoices, newest payment first
func (r *InvoiceRepository) ListPaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, domain.InvoiceStatusPaid).
		Order("paid_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) filtered(ctx context.Context, filter InvoiceFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("invoice_type = ?", filter.Type)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("issue_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("issue_date <= ?", *filter.To)
	}
	return query
}
