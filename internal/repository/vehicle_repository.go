package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
)

// VehicleFilter narrows vehicle lists; zero values impose no constraint
type VehicleFilter struct {
	CustomerID *uuid.UUID
	Status     domain.VehicleStatus
	Search     string
}

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) WithTx(tx *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: tx}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	if err := r.db.WithContext(ctx).Preload("Customer").First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetByPlate looks a vehicle up by its normalized plate
func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).Preload("Customer").
		First(&vehicle, "plate = ?", strings.ToUpper(strings.TrimSpace(plate))).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Omit("Customer").Save(vehicle).Error
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Vehicle{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter, page Page) ([]domain.Vehicle, int64, error) {
	var vehicles []domain.Vehicle
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Vehicle{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(plate) LIKE ?"+likeEscape+" OR LOWER(brand) LIKE ?"+likeEscape+" OR LOWER(model) LIKE ?"+likeEscape,
			p, p, p,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(query).Preload("Customer").Order("created_at DESC").Find(&vehicles).Error
	return vehicles, total, err
}

// RecordService stamps the last service date and bumps the service counter
func (r *VehicleRepository) RecordService(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Vehicle{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_service":   at,
		"total_services": gorm.Expr("total_services + 1"),
		"updated_at":     at,
	}).Error
}
