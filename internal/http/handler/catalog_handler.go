package handler

import (
	"net/http"

	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// List godoc
// @Summary List catalog services
// @Description Active services only unless all=true
// @Tags Catalog
// @Produce json
// @Param all query bool false "Include inactive services"
// @Param search query string false "Search by name or category"
// @Success 200 {array} domain.CatalogServiceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/services [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	services, err := h.catalogService.List(r.Context(), activeOnly, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, "list catalog services", err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

// Create godoc
// @Summary Create catalog service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateCatalogServiceRequest true "Service data"
// @Success 201 {object} domain.CatalogServiceDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/services [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCatalogServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	svc, err := h.catalogService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "create catalog service", err)
		return
	}
	respondJSON(w, http.StatusCreated, svc)
}

// GetByID godoc
// @Summary Get catalog service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} domain.CatalogServiceDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/services/{id} [get]
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	svc, err := h.catalogService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "get catalog service", err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// Update godoc
// @Summary Update catalog service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body domain.CreateCatalogServiceRequest true "Service data"
// @Success 200 {object} domain.CatalogServiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/services/{id} [put]
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.CreateCatalogServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	svc, err := h.catalogService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "update catalog service", err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// Delete godoc
// @Summary Delete catalog service
// @Tags Catalog
// @Param id path string true "Service ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/services/{id} [delete]
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, "delete catalog service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
