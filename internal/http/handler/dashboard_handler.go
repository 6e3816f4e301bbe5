package handler

import (
	"net/http"

	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get dashboard metrics
// @Description Work order counts per status, revenue from invoices paid in the range, outstanding amount of draft and sent invoices, and stock alerts.
// @Description
// @Description The range defaults to the current month up to now; `to` covers its whole day.
// @Tags Dashboard
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.DashboardDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics, err := h.dashboardService.GetMetrics(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, h.logger, "get dashboard metrics", err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// @Summary Get stock alerts
// @Description Items that are out of stock or at or below their minimum
// @Tags Dashboard
// @Produce json
// @Success 200 {array} domain.StockAlertDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/stock-alerts [get]
func (h *DashboardHandler) StockAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.dashboardService.StockAlerts(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "get stock alerts", err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToStockAlertDTOs(alerts))
}
