package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

type WorkOrderHandler struct {
	workOrderService *service.WorkOrderService
	invoiceService   *service.InvoiceService
	logger           *zap.Logger
}

func NewWorkOrderHandler(workOrderService *service.WorkOrderService, invoiceService *service.InvoiceService, logger *zap.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		workOrderService: workOrderService,
		invoiceService:   invoiceService,
		logger:           logger,
	}
}

// WorkOrderTotalResponse is returned by the recalculate endpoint
type WorkOrderTotalResponse struct {
	TotalValue decimal.Decimal `json:"totalValue"`
}

// List godoc
// @Summary List work orders
// @Description Newest first. Every supplied filter must match.
// @Tags Work Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Customer name, order number or plate"
// @Param status query string false "Exact status"
// @Param mechanicId query string false "Assigned mechanic"
// @Param customerId query string false "Customer"
// @Param vehicleId query string false "Vehicle"
// @Param service query string false "Catalog service name on any service line"
// @Param dateFrom query string false "Estimated completion from (YYYY-MM-DD)"
// @Param dateTo query string false "Estimated completion to, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.WorkOrderDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders [get]
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.WorkOrderFilter{
		Search:  q.Get("search"),
		Status:  domain.WorkOrderStatus(q.Get("status")),
		Service: q.Get("service"),
	}

	var err error
	if filter.MechanicID, err = parseOptionalUUID(r, "mechanicId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.CustomerID, err = parseOptionalUUID(r, "customerId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.VehicleID, err = parseOptionalUUID(r, "vehicleId"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.DateFrom, err = parseDate(r, "dateFrom"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	dateTo, err := parseDate(r, "dateTo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.DateTo = endOfDay(dateTo)

	result, err := h.workOrderService.List(r.Context(), filter, parsePage(r))
	if err != nil {
		respondServiceError(w, h.logger, "list work orders", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Open a work order
// @Description Assigns the order number, stores the lines and writes the "OS Criada" history entry in one transaction
// @Tags Work Orders
// @Accept json
// @Produce json
// @Param request body domain.CreateWorkOrderRequest true "Work order data"
// @Success 201 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders [post]
func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	wo, err := h.workOrderService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "create work order", err)
		return
	}
	w.Header().Set("Location", "/api/v1/work-orders/"+wo.ID.String())
	respondJSON(w, http.StatusCreated, wo)
}

// GetByID godoc
// @Summary Get work order
// @Description Returns the order with customer, vehicle, lines and history
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	wo, err := h.workOrderService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "get work order", err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

// Update godoc
// @Summary Update work order
// @Description Partial update. A status change is checked against the lifecycle and recorded in history.
// @Tags Work Orders
// @Accept json
// @Produce json
// @Param id path string true "Work order ID"
// @Param request body domain.UpdateWorkOrderRequest true "Fields to change"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id} [patch]
func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateWorkOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	wo, err := h.workOrderService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "update work order", err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

// CheckTransition godoc
// @Summary Check a status change
// @Description Reports whether the order may move to the status and what the change requires
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Param to query string true "Target status"
// @Success 200 {object} domain.TransitionCheckDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/transition-check [get]
func (h *WorkOrderHandler) CheckTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	to := r.URL.Query().Get("to")
	if to == "" {
		respondWithError(w, http.StatusBadRequest, "to is required")
		return
	}
	check, err := h.workOrderService.CheckTransition(r.Context(), id, domain.WorkOrderStatus(to))
	if err != nil {
		respondServiceError(w, h.logger, "check transition", err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

// Delete godoc
// @Summary Delete work order
// @Description Orders with invoices cannot be deleted
// @Tags Work Orders
// @Param id path string true "Work order ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id} [delete]
func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.workOrderService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, "delete work order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddService godoc
// @Summary Add a service line
// @Tags Work Orders
// @Accept json
// @Produce json
// @Param id path string true "Work order ID"
// @Param request body domain.ServiceLineInput true "Service line"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/services [post]
func (h *WorkOrderHandler) AddService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.ServiceLineInput
	if !decodeAndValidate(w, r, &req) {
		return
	}
	wo, err := h.workOrderService.AddService(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, h.logger, "add service line", err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

// RemoveService godoc
// @Summary Remove a service line
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Param lineId path string true "Service line ID"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/services/{lineId} [delete]
func (h *WorkOrderHandler) RemoveService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(w, r, "lineId")
	if !ok {
		return
	}
	wo, err := h.workOrderService.RemoveService(r.Context(), id, lineID)
	if err != nil {
		respondServiceError(w, h.logger, "remove service line", err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

// AddPart godoc
// @Summary Add a part line
// @Description Takes the quantity from stock; the line records whether stock was available
// @Tags Work Orders
// @Accept json
// @Produce json
// @Param id path string true "Work order ID"
// @Param request body domain.PartLineInput true "Part line"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/parts [post]
func (h *WorkOrderHandler) AddPart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.PartLineInput
	if !decodeAndValidate(w, r, &req) {
		return
	}
	wo, err := h.workOrderService.AddPart(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, h.logger, "add part line", err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

// RemovePart godoc
// @Summary Remove a part line
// @Description Parts taken from stock are returned to it
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Param lineId path string true "Part line ID"
// @Success 200 {object} domain.WorkOrderDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/parts/{lineId} [delete]
func (h *WorkOrderHandler) RemovePart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(w, r, "lineId")
	if !ok {
		return
	}
	wo, err := h.workOrderService.RemovePart(r.Context(), id, lineID)
	if err != nil {
		respondServiceError(w, h.logger, "remove part line", err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

// RecalculateTotal godoc
// @Summary Recalculate the order total
// @Description Sums service and part line totals and stores the result
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} WorkOrderTotalResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/recalculate [post]
func (h *WorkOrderHandler) RecalculateTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	total, err := h.workOrderService.RecalculateTotal(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "recalculate total", err)
		return
	}
	respondJSON(w, http.StatusOK, WorkOrderTotalResponse{TotalValue: total})
}

// History godoc
// @Summary Work order history
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {array} domain.WorkOrderHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/history [get]
func (h *WorkOrderHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	entries, err := h.workOrderService.History(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "get work order history", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Detours godoc
// @Summary Waiting-state detours
// @Description Status changes into and out of Aguardando Peças and Aguardando Cliente, oldest first
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {array} domain.WorkOrderHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/detours [get]
func (h *WorkOrderHandler) Detours(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	entries, err := h.workOrderService.Detours(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "get work order detours", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Invoices godoc
// @Summary Invoices of a work order
// @Tags Work Orders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {array} domain.InvoiceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/invoices [get]
func (h *WorkOrderHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	invoices, err := h.invoiceService.ListByWorkOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "list work order invoices", err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}
