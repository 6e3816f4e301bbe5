package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkOrderFilter holds list filters. Every set field is ANDed; zero values
// impose no constraint.
type WorkOrderFilter struct {
	// Search matches customer name, order number or plate
	Search     string
	Status     domain.WorkOrderStatus
	MechanicID *uuid.UUID
	CustomerID *uuid.UUID
	VehicleID  *uuid.UUID
	// Service matches a catalog service name on any service line
	Service string
	// DateFrom and DateTo bound the estimated completion date, inclusive
	DateFrom *time.Time
	DateTo   *time.Time
}

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) WithTx(tx *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: tx}
}

// withDetails preloads everything a work order screen shows
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Vehicle").
		Preload("Mechanic").
		Preload("Services", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Services.Service").
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Parts.Item").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("History.PerformedBy")
}

// Create inserts the header only; lines are added with AddServiceLine/AddPartLine
func (r *WorkOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(wo).Error
}

// GetByID returns the fully joined work order
func (r *WorkOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	if err := withDetails(r.db.WithContext(ctx)).First(&wo, "work_orders.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// GetHeader returns the work order row without associations, locking it for
// update when called inside a PostgreSQL transaction
func (r *WorkOrderRepository) GetHeader(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&wo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

// List returns joined work orders, newest first
func (r *WorkOrderRepository) List(ctx context.Context, filter WorkOrderFilter, page Page) ([]domain.WorkOrder, int64, error) {
	var orders []domain.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.
			Joins("JOIN customers ON customers.id = work_orders.customer_id").
			Joins("JOIN vehicles ON vehicles.id = work_orders.vehicle_id").
			Where("(LOWER(customers.name) LIKE ?"+likeEscape+
				" OR LOWER(work_orders.order_number) LIKE ?"+likeEscape+
				" OR LOWER(vehicles.plate) LIKE ?"+likeEscape+")", p, p, p)
	}
	if filter.Status != "" {
		query = query.Where("work_orders.status = ?", filter.Status)
	}
	if filter.MechanicID != nil {
		query = query.Where("work_orders.mechanic_id = ?", *filter.MechanicID)
	}
	if filter.CustomerID != nil {
		query = query.Where("work_orders.customer_id = ?", *filter.CustomerID)
	}
	if filter.VehicleID != nil {
		query = query.Where("work_orders.vehicle_id = ?", *filter.VehicleID)
	}
	if filter.Service != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM work_order_services wos
			JOIN services s ON s.id = wos.service_id
			WHERE wos.work_order_id = work_orders.id AND LOWER(s.name) LIKE ?`+likeEscape+`)`,
			likePattern(filter.Service))
	}
	if filter.DateFrom != nil {
		query = query.Where("work_orders.estimated_completion >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("work_orders.estimated_completion <= ?", *filter.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := withDetails(page.apply(query)).
		Order("work_orders.created_at DESC").
		Find(&orders).Error
	return orders, total, err
}

// UpdateFields writes only the given columns and stamps updated_at
func (r *WorkOrderRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// Delete removes the header together with its lines and history
func (r *WorkOrderRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_order_id = ?", id).Delete(&domain.WorkOrderServiceLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_order_id = ?", id).Delete(&domain.WorkOrderPartLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_order_id = ?", id).Delete(&domain.WorkOrderHistory{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.WorkOrder{}, "id = ?", id)
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

func (r *WorkOrderRepository) nextPosition(ctx context.Context, model interface{}, workOrderID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(model).
		Where("work_order_id = ?", workOrderID).
		Select("MAX(position)").
		Row().Scan(&max)
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// AddServiceLine appends a service line after the existing ones
func (r *WorkOrderRepository) AddServiceLine(ctx context.Context, line *domain.WorkOrderServiceLine) error {
	pos, err := r.nextPosition(ctx, &domain.WorkOrderServiceLine{}, line.WorkOrderID)
	if err != nil {
		return err
	}
	line.Position = pos
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

// AddPartLine appends a part line after the existing ones
func (r *WorkOrderRepository) AddPartLine(ctx context.Context, line *domain.WorkOrderPartLine) error {
	pos, err := r.nextPosition(ctx, &domain.WorkOrderPartLine{}, line.WorkOrderID)
	if err != nil {
		return err
	}
	line.Position = pos
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

func (r *WorkOrderRepository) RemoveServiceLine(ctx context.Context, workOrderID, lineID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND work_order_id = ?", lineID, workOrderID).
		Delete(&domain.WorkOrderServiceLine{})
	return result.RowsAffected, result.Error
}

// GetPartLine returns one part line of a work order
func (r *WorkOrderRepository) GetPartLine(ctx context.Context, workOrderID, lineID uuid.UUID) (*domain.WorkOrderPartLine, error) {
	var line domain.WorkOrderPartLine
	err := r.db.WithContext(ctx).First(&line, "id = ? AND work_order_id = ?", lineID, workOrderID).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *WorkOrderRepository) RemovePartLine(ctx context.Context, workOrderID, lineID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND work_order_id = ?", lineID, workOrderID).
		Delete(&domain.WorkOrderPartLine{})
	return result.RowsAffected, result.Error
}

// RecalculateTotal stores the sum of all service and part line totals
func (r *WorkOrderRepository) RecalculateTotal(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var services, parts decimal.Decimal
	db := r.db.WithContext(ctx)

	if err := db.Model(&domain.WorkOrderServiceLine{}).
		Where("work_order_id = ?", id).
		Select("COALESCE(SUM(total_price), 0)").
		Row().Scan(&services); err != nil {
		return decimal.Zero, err
	}
	if err := db.Model(&domain.WorkOrderPartLine{}).
		Where("work_order_id = ?", id).
		Select("COALESCE(SUM(total_price), 0)").
		Row().Scan(&parts); err != nil {
		return decimal.Zero, err
	}

	total := services.Add(parts).Round(2)
	err := db.Model(&domain.WorkOrder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_amount": total,
		"updated_at":   time.Now().UTC(),
	}).Error
	return total, err
}

// CountByStatus returns the number of work orders per status
func (r *WorkOrderRepository) CountByStatus(ctx context.Context) (map[domain.WorkOrderStatus]int64, error) {
	var rows []struct {
		Status domain.WorkOrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.WorkOrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
