package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
)

// WorkOrderHistoryRepository is append-only: there is no update or delete
type WorkOrderHistoryRepository struct {
	db *gorm.DB
}

func NewWorkOrderHistoryRepository(db *gorm.DB) *WorkOrderHistoryRepository {
	return &WorkOrderHistoryRepository{db: db}
}

func (r *WorkOrderHistoryRepository) WithTx(tx *gorm.DB) *WorkOrderHistoryRepository {
	return &WorkOrderHistoryRepository{db: tx}
}

// Append records a new history entry
func (r *WorkOrderHistoryRepository) Append(ctx context.Context, entry *domain.WorkOrderHistory) error {
	return r.db.WithContext(ctx).Omit("PerformedBy").Create(entry).Error
}

// ListByWorkOrder returns the history newest first
func (r *WorkOrderHistoryRepository) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]domain.WorkOrderHistory, error) {
	var history []domain.WorkOrderHistory
	err := r.db.WithContext(ctx).
		Preload("PerformedBy").
		Where("work_order_id = ?", workOrderID).
		Order("created_at DESC").
		Find(&history).Error
	return history, err
}

// ListDetours returns status changes into or out of the waiting states
// (Aguardando Peças, Aguardando Cliente), oldest first
func (r *WorkOrderHistoryRepository) ListDetours(ctx context.Context, workOrderID uuid.UUID) ([]domain.WorkOrderHistory, error) {
	detours := []domain.WorkOrderStatus{domain.StatusAwaitingParts, domain.StatusAwaitingCustomer}
	var history []domain.WorkOrderHistory
	err := r.db.WithContext(ctx).
		Preload("PerformedBy").
		Where("work_order_id = ?", workOrderID).
		Where("to_status IN ? OR from_status IN ?", detours, detours).
		Order("created_at ASC").
		Find(&history).Error
	return history, err
}
