package handler

import (
	"net/http"

	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// List godoc
// @Summary List inventory items
// @Tags Inventory
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, code, description, category or supplier"
// @Param category query string false "Filter by category"
// @Param lowStock query bool false "Only items at or below their minimum"
// @Param sort query string false "Sort option" Enums(name, name-desc, stock-low, stock-high, price-low, price-high, updated)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.InventoryItemDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory [get]
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.InventoryFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		LowStock: q.Get("lowStock") == "true",
		Sort:     q.Get("sort"),
	}
	result, err := h.inventoryService.List(r.Context(), filter, parsePage(r))
	if err != nil {
		respondServiceError(w, h.logger, "list inventory", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// LowStock godoc
// @Summary Items at or below minimum stock
// @Tags Inventory
// @Produce json
// @Success 200 {array} domain.InventoryItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.LowStock(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "list low stock", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Create godoc
// @Summary Create inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body domain.CreateInventoryItemRequest true "Item data"
// @Success 201 {object} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory [post]
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInventoryItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.inventoryService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "create inventory item", err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// GetByID godoc
// @Summary Get inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} domain.InventoryItemDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id} [get]
func (h *InventoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.inventoryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "get inventory item", err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Update godoc
// @Summary Update inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body domain.UpdateInventoryItemRequest true "Item data"
// @Success 200 {object} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id} [put]
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateInventoryItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.inventoryService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "update inventory item", err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// AdjustStock godoc
// @Summary Adjust stock
// @Description Adds delta (may be negative) to the current stock; stock never goes below zero
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body domain.AdjustStockRequest true "Adjustment"
// @Success 200 {object} domain.InventoryItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.AdjustStockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.inventoryService.AdjustStock(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "adjust stock", err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete inventory item
// @Tags Inventory
// @Param id path string true "Item ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /inventory/{id} [delete]
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, "delete inventory item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
