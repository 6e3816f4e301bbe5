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

// CatalogService manages the services a shop offers
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	logger      *zap.Logger
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo, logger: logger}
}

func validateCatalogRequest(req *domain.CreateCatalogServiceRequest) error {
	v := newValidationError()
	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "name is required")
	}
	if req.BasePrice.IsNegative() {
		v.Add("basePrice", "must not be negative")
	}
	if req.EstimatedHours.IsNegative() {
		v.Add("estimatedHours", "must not be negative")
	}
	return v.OrNil()
}

func applyCatalogRequest(svc *domain.CatalogService, req *domain.CreateCatalogServiceRequest) {
	svc.Name = strings.TrimSpace(req.Name)
	svc.Description = req.Description
	svc.Category = req.Category
	svc.BasePrice = req.BasePrice.Round(2)
	svc.EstimatedHours = req.EstimatedHours.Round(2)
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
}

func (s *CatalogService) Create(ctx context.Context, req *domain.CreateCatalogServiceRequest) (*domain.CatalogServiceDTO, error) {
	if err := validateCatalogRequest(req); err != nil {
		return nil, err
	}
	svc := &domain.CatalogService{IsActive: true}
	applyCatalogRequest(svc, req)
	if err := s.catalogRepo.Create(ctx, svc); err != nil {
		return nil, storeError("create service", "service", svc.Name, err)
	}
	dto := mapper.ToCatalogServiceDTO(svc)
	return &dto, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CatalogServiceDTO, error) {
	svc, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get service", "service", id, err)
	}
	dto := mapper.ToCatalogServiceDTO(svc)
	return &dto, nil
}

// List returns catalog entries by category and name
func (s *CatalogService) List(ctx context.Context, activeOnly bool, search string) ([]domain.CatalogServiceDTO, error) {
	services, err := s.catalogRepo.List(ctx, activeOnly, search)
	if err != nil {
		return nil, storeError("list services", "service", "", err)
	}
	dtos := make([]domain.CatalogServiceDTO, len(services))
	for i := range services {
		dtos[i] = mapper.ToCatalogServiceDTO(&services[i])
	}
	return dtos, nil
}

func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req *domain.CreateCatalogServiceRequest) (*domain.CatalogServiceDTO, error) {
	if err := validateCatalogRequest(req); err != nil {
		return nil, err
	}
	svc, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get service", "service", id, err)
	}
	applyCatalogRequest(svc, req)
	if err := s.catalogRepo.Update(ctx, svc); err != nil {
		return nil, storeError("update service", "service", id, err)
	}
	dto := mapper.ToCatalogServiceDTO(svc)
	return &dto, nil
}

// Delete removes a catalog entry. Entries already used on work orders should
// be deactivated instead; the store rejects the delete through the foreign key.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.catalogRepo.Delete(ctx, id)
	if err != nil {
		return storeError("delete service", "service", id, err)
	}
	if affected == 0 {
		return notFound("service", id)
	}
	return nil
}
