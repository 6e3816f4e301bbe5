package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
)

type VehicleService struct {
	vehicleRepo   *repository.VehicleRepository
	customerRepo  *repository.CustomerRepository
	workOrderRepo *repository.WorkOrderRepository
	logger        *zap.Logger
}

func NewVehicleService(
	vehicleRepo *repository.VehicleRepository,
	customerRepo *repository.CustomerRepository,
	workOrderRepo *repository.WorkOrderRepository,
	logger *zap.Logger,
) *VehicleService {
	return &VehicleService{
		vehicleRepo:   vehicleRepo,
		customerRepo:  customerRepo,
		workOrderRepo: workOrderRepo,
		logger:        logger,
	}
}

// NormalizePlate upper-cases a plate and strips separators
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer("-", "", " ", "").Replace(plate)
}

func applyVehicleRequest(v *domain.Vehicle, req *domain.CreateVehicleRequest) {
	v.CustomerID = req.CustomerID
	v.Brand = strings.TrimSpace(req.Brand)
	v.Model = strings.TrimSpace(req.Model)
	v.Year = req.Year
	v.Plate = NormalizePlate(req.Plate)
	v.Color = req.Color
	v.FuelType = req.FuelType
	v.Chassis = strings.ToUpper(req.Chassis)
	v.Mileage = req.Mileage
	v.Notes = req.Notes
	if req.Status != "" {
		v.Status = req.Status
	}
}

func (s *VehicleService) requireCustomer(ctx context.Context, id uuid.UUID) error {
	ok, err := s.customerRepo.Exists(ctx, id)
	if err != nil {
		return storeError("get customer", "customer", id, err)
	}
	if !ok {
		return notFound("customer", id)
	}
	return nil
}

// Create registers a vehicle for an existing customer. Plates are unique.
func (s *VehicleService) Create(ctx context.Context, req *domain.CreateVehicleRequest) (*domain.VehicleDTO, error) {
	if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	vehicle := &domain.Vehicle{Status: domain.VehicleStatusActive}
	applyVehicleRequest(vehicle, req)
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, storeError("create vehicle", "vehicle with plate "+vehicle.Plate, vehicle.Plate, err)
	}

	s.logger.Info("vehicle created",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("plate", vehicle.Plate))
	return s.GetByID(ctx, vehicle.ID)
}

func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.VehicleDTO, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get vehicle", "vehicle", id, err)
	}
	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

// GetByPlate finds a vehicle by plate in any common notation
func (s *VehicleService) GetByPlate(ctx context.Context, plate string) (*domain.VehicleDTO, error) {
	normalized := NormalizePlate(plate)
	vehicle, err := s.vehicleRepo.GetByPlate(ctx, normalized)
	if err != nil {
		return nil, storeError("get vehicle", "vehicle", normalized, err)
	}
	dto := mapper.ToVehicleDTO(vehicle)
	return &dto, nil
}

func (s *VehicleService) List(ctx context.Context, filter repository.VehicleFilter, page repository.Page) (*domain.PaginatedResponse, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, filter, page)
	if err != nil {
		return nil, storeError("list vehicles", "vehicle", "", err)
	}
	dtos := make([]domain.VehicleDTO, len(vehicles))
	for i := range vehicles {
		dtos[i] = mapper.ToVehicleDTO(&vehicles[i])
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Update replaces the editable fields. Service counters are kept.
func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateVehicleRequest) (*domain.VehicleDTO, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get vehicle", "vehicle", id, err)
	}
	if req.CustomerID != vehicle.CustomerID {
		if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
			return nil, err
		}
	}

	applyVehicleRequest(vehicle, req)
	vehicle.Customer = nil
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, storeError("update vehicle", "vehicle with plate "+vehicle.Plate, id, err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a vehicle that has no work orders
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	vehicleID := id
	_, count, err := s.workOrderRepo.List(ctx, repository.WorkOrderFilter{VehicleID: &vehicleID}, repository.NewPage(1, 1))
	if err != nil {
		return storeError("count work orders", "work order", id, err)
	}
	if count > 0 {
		return invalidState("vehicle has %d work order(s) and cannot be deleted", count)
	}

	affected, err := s.vehicleRepo.Delete(ctx, id)
	if err != nil {
		return storeError("delete vehicle", "vehicle", id, err)
	}
	if affected == 0 {
		return notFound("vehicle", id)
	}
	return nil
}
