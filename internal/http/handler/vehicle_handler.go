package handler

import (
	"net/http"

	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
	logger         *zap.Logger
}

func NewVehicleHandler(vehicleService *service.VehicleService, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// List godoc
// @Summary List vehicles
// @Tags Vehicles
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param customerId query string false "Filter by owner"
// @Param status query string false "Filter by status" Enums(active, inactive, maintenance)
// @Param search query string false "Search by plate, brand or model"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.VehicleDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles [get]
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseOptionalUUID(r, "customerId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := repository.VehicleFilter{
		CustomerID: customerID,
		Status:     domain.VehicleStatus(r.URL.Query().Get("status")),
		Search:     r.URL.Query().Get("search"),
	}
	result, err := h.vehicleService.List(r.Context(), filter, parsePage(r))
	if err != nil {
		respondServiceError(w, h.logger, "list vehicles", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Register vehicle
// @Description Plates are stored upper-case without separators and must be unique
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param request body domain.CreateVehicleRequest true "Vehicle data"
// @Success 201 {object} domain.VehicleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles [post]
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVehicleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	vehicle, err := h.vehicleService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "create vehicle", err)
		return
	}
	w.Header().Set("Location", "/api/v1/vehicles/"+vehicle.ID.String())
	respondJSON(w, http.StatusCreated, vehicle)
}

// GetByID godoc
// @Summary Get vehicle
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} domain.VehicleDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	vehicle, err := h.vehicleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "get vehicle", err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// GetByPlate godoc
// @Summary Find vehicle by plate
// @Tags Vehicles
// @Produce json
// @Param plate path string true "Plate, with or without separator"
// @Success 200 {object} domain.VehicleDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/plate/{plate} [get]
func (h *VehicleHandler) GetByPlate(w http.ResponseWriter, r *http.Request) {
	plate := chiParam(r, "plate")
	if plate == "" {
		respondWithError(w, http.StatusBadRequest, "plate is required")
		return
	}
	vehicle, err := h.vehicleService.GetByPlate(r.Context(), plate)
	if err != nil {
		respondServiceError(w, h.logger, "get vehicle by plate", err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// Update godoc
// @Summary Update vehicle
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param request body domain.UpdateVehicleRequest true "Vehicle data"
// @Success 200 {object} domain.VehicleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateVehicleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	vehicle, err := h.vehicleService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "update vehicle", err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// Delete godoc
// @Summary Delete vehicle
// @Description Vehicles with work orders cannot be deleted
// @Tags Vehicles
// @Param id path string true "Vehicle ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.vehicleService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, "delete vehicle", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
