package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/http/handler"
	"github.com/tigerapp/oficina-api/internal/testutil"
	"github.com/xuri/excelize/v2"
)

func seedPaidReceipt(t *testing.T, h *handlers) {
	t.Helper()
	wo := completedOrder(t, h, "400.00")
	cash := domain.PaymentMethodCash
	rr := createInvoice(t, h, domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        wo.CustomerID,
		Type:              domain.InvoiceTypeReceipt,
		UseWorkOrderTotal: true,
		PaymentMethod:     &cash,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestDashboardHandler_GetMetrics(t *testing.T) {
	h := setupHandlers(t)
	seedPaidReceipt(t, h)
	testutil.CreateTestInventoryItem(t, h.db, "Correia dentada", "180.00", 0, 1)

	t.Run("current month", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.dashboard.GetMetrics(rr, h.request(t, http.MethodGet, "/dashboard/metrics", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var metrics domain.DashboardDTO
		decode(t, rr, &metrics)
		assert.Equal(t, "400", metrics.Revenue.String())
		assert.Equal(t, int64(1), metrics.WorkOrdersByStatus[domain.StatusCompleted])
		assert.Len(t, metrics.StockAlerts, 1)
	})

	t.Run("bad date", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.dashboard.GetMetrics(rr, h.request(t, http.MethodGet, "/dashboard/metrics?from=ontem", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("inverted range", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.dashboard.GetMetrics(rr, h.request(t, http.MethodGet, "/dashboard/metrics?from=2024-05-01&to=2024-04-01", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("stock alerts", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.dashboard.StockAlerts(rr, h.request(t, http.MethodGet, "/dashboard/stock-alerts", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var alerts []domain.StockAlertDTO
		decode(t, rr, &alerts)
		require.Len(t, alerts, 1)
		assert.Equal(t, domain.StockOut, alerts[0].Level)
	})
}

func TestReportHandler_InvoiceReport(t *testing.T) {
	h := setupHandlers(t)
	seedPaidReceipt(t, h)

	t.Run("download", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.reports.InvoiceReport(rr, h.request(t, http.MethodGet, "/reports/invoices.xlsx", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "attachment;"))
		assert.Empty(t, rr.Header().Get(handler.ReportPathHeader))

		f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Faturas")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("archived copy", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.reports.InvoiceReport(rr, h.request(t, http.MethodGet, "/reports/invoices.xlsx?archive=true", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, rr.Header().Get(handler.ReportPathHeader))
	})

	t.Run("bad range", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.reports.InvoiceReport(rr, h.request(t, http.MethodGet, "/reports/invoices.xlsx?to=amanha", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
