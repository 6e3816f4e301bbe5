package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
)

type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
	logger        *zap.Logger
}

func NewInventoryService(inventoryRepo *repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{inventoryRepo: inventoryRepo, logger: logger}
}

func validateInventoryRequest(req *domain.CreateInventoryItemRequest) error {
	v := newValidationError()
	if strings.TrimSpace(req.Code) == "" {
		v.Add("code", "code is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "name is required")
	}
	if req.CurrentStock < 0 {
		v.Add("currentStock", "must not be negative")
	}
	if req.MinimumStock < 0 {
		v.Add("minimumStock", "must not be negative")
	}
	if req.UnitPrice.IsNegative() {
		v.Add("unitPrice", "must not be negative")
	}
	return v.OrNil()
}

func applyInventoryRequest(item *domain.InventoryItem, req *domain.CreateInventoryItemRequest) {
	item.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Category = req.Category
	item.Brand = req.Brand
	item.Model = req.Model
	item.CurrentStock = req.CurrentStock
	item.MinimumStock = req.MinimumStock
	item.UnitPrice = req.UnitPrice.Round(2)
	item.Supplier = req.Supplier
	item.Location = req.Location
}

func (s *InventoryService) Create(ctx context.Context, req *domain.CreateInventoryItemRequest) (*domain.InventoryItemDTO, error) {
	if err := validateInventoryRequest(req); err != nil {
		return nil, err
	}
	item := &domain.InventoryItem{}
	applyInventoryRequest(item, req)
	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, storeError("create inventory item", "inventory item with code "+item.Code, item.Code, err)
	}
	dto := mapper.ToInventoryItemDTO(item)
	return &dto, nil
}

func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItemDTO, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get inventory item", "inventory item", id, err)
	}
	dto := mapper.ToInventoryItemDTO(item)
	return &dto, nil
}

// List filters and sorts inventory. Unknown sort keys fall back to name.
func (s *InventoryService) List(ctx context.Context, filter repository.InventoryFilter, page repository.Page) (*domain.PaginatedResponse, error) {
	items, total, err := s.inventoryRepo.List(ctx, filter, page)
	if err != nil {
		return nil, storeError("list inventory", "inventory item", "", err)
	}
	dtos := make([]domain.InventoryItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToInventoryItemDTO(&items[i])
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// LowStock returns items at or below their minimum
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.InventoryItemDTO, error) {
	items, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, storeError("list low stock", "inventory item", "", err)
	}
	dtos := make([]domain.InventoryItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToInventoryItemDTO(&items[i])
	}
	return dtos, nil
}

func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateInventoryItemRequest) (*domain.InventoryItemDTO, error) {
	if err := validateInventoryRequest(req); err != nil {
		return nil, err
	}
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get inventory item", "inventory item", id, err)
	}
	applyInventoryRequest(item, req)
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, storeError("update inventory item", "inventory item with code "+item.Code, id, err)
	}
	dto := mapper.ToInventoryItemDTO(item)
	return &dto, nil
}

// AdjustStock applies a stock movement. Stock never goes below zero.
func (s *InventoryService) AdjustStock(ctx context.Context, id uuid.UUID, req *domain.AdjustStockRequest) (*domain.InventoryItemDTO, error) {
	if req.Delta == 0 {
		v := newValidationError()
		v.Add("delta", "must not be zero")
		return nil, v
	}

	if err := s.inventoryRepo.AdjustStock(ctx, id, req.Delta); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			v := newValidationError()
			v.Add("delta", "stock cannot go below zero")
			return nil, v
		}
		return nil, storeError("adjust stock", "inventory item", id, err)
	}

	s.logger.Info("stock adjusted",
		zap.String("item_id", id.String()),
		zap.Int("delta", req.Delta),
		zap.String("reason", req.Reason))
	return s.GetByID(ctx, id)
}

func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.inventoryRepo.Delete(ctx, id)
	if err != nil {
		return storeError("delete inventory item", "inventory item", id, err)
	}
	if affected == 0 {
		return notFound("inventory item", id)
	}
	return nil
}
