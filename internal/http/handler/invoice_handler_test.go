package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
)

func completedOrder(t *testing.T, h *handlers, price string) *domain.WorkOrderDTO {
	t.Helper()
	wo := createOrder(t, h, price)
	require.Equal(t, http.StatusOK, patchStatus(t, h, wo.ID, domain.StatusInProgress).Code)
	require.Equal(t, http.StatusOK, patchStatus(t, h, wo.ID, domain.StatusCompleted).Code)
	return wo
}

func createInvoice(t *testing.T, h *handlers, body domain.CreateInvoiceRequest) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.invoices.Create(rr, h.request(t, http.MethodPost, "/invoices", body, nil))
	return rr
}

func TestInvoiceHandler_CreateReceipt(t *testing.T) {
	h := setupHandlers(t)
	wo := completedOrder(t, h, "250.00")
	pix := domain.PaymentMethodPix

	rr := createInvoice(t, h, domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        wo.CustomerID,
		Type:              domain.InvoiceTypeReceipt,
		UseWorkOrderTotal: true,
		PaymentMethod:     &pix,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var invoice domain.InvoiceDTO
	decode(t, rr, &invoice)
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	assert.Equal(t, "250", invoice.TotalAmount.String())
	assert.NotNil(t, invoice.PaidAt)

	rr = httptest.NewRecorder()
	params := map[string]string{"id": wo.ID.String()}
	h.workOrders.Invoices(rr, h.request(t, http.MethodGet, "/work-orders/x/invoices", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []domain.InvoiceDTO
	decode(t, rr, &list)
	assert.Len(t, list, 1)
}

func TestInvoiceHandler_Create_Errors(t *testing.T) {
	h := setupHandlers(t)
	open := createOrder(t, h, "100.00")

	t.Run("unknown type", func(t *testing.T) {
		rr := createInvoice(t, h, domain.CreateInvoiceRequest{
			WorkOrderID: open.ID,
			CustomerID:  open.CustomerID,
			Type:        "boleto",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("receipt needs a completed order", func(t *testing.T) {
		cash := domain.PaymentMethodCash
		rr := createInvoice(t, h, domain.CreateInvoiceRequest{
			WorkOrderID:       open.ID,
			CustomerID:        open.CustomerID,
			Type:              domain.InvoiceTypeReceipt,
			UseWorkOrderTotal: true,
			PaymentMethod:     &cash,
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("negative subtotal", func(t *testing.T) {
		negative := decimal.RequireFromString("-10")
		rr := createInvoice(t, h, domain.CreateInvoiceRequest{
			WorkOrderID: open.ID,
			CustomerID:  open.CustomerID,
			Type:        domain.InvoiceTypeInvoice,
			Subtotal:    &negative,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var problem domain.APIError
		decode(t, rr, &problem)
		assert.Contains(t, problem.Errors, "subtotal")
	})
}

func TestInvoiceHandler_Lifecycle(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "180.00")

	rr := createInvoice(t, h, domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        wo.CustomerID,
		Type:              domain.InvoiceTypeInvoice,
		UseWorkOrderTotal: true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var invoice domain.InvoiceDTO
	decode(t, rr, &invoice)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	params := map[string]string{"id": invoice.ID.String()}

	rr = httptest.NewRecorder()
	h.invoices.Send(rr, h.request(t, http.MethodPost, "/invoices/x/send", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)

	t.Run("pay needs a known method", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.invoices.MarkPaid(rr, h.request(t, http.MethodPost, "/invoices/x/pay", map[string]string{"paymentMethod": "cheque"}, params))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("pay", func(t *testing.T) {
		rr := httptest.NewRecorder()
		body := domain.MarkPaidRequest{PaymentMethod: domain.PaymentMethodCard}
		h.invoices.MarkPaid(rr, h.request(t, http.MethodPost, "/invoices/x/pay", body, params))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var paid domain.InvoiceDTO
		decode(t, rr, &paid)
		assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	})

	t.Run("paid invoices cannot be cancelled", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.invoices.Cancel(rr, h.request(t, http.MethodPost, "/invoices/x/cancel", nil, params))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestInvoiceHandler_PayCancelled(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "90.00")

	rr := createInvoice(t, h, domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        wo.CustomerID,
		Type:              domain.InvoiceTypeInvoice,
		UseWorkOrderTotal: true,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var invoice domain.InvoiceDTO
	decode(t, rr, &invoice)
	params := map[string]string{"id": invoice.ID.String()}

	rr = httptest.NewRecorder()
	h.invoices.Cancel(rr, h.request(t, http.MethodPost, "/invoices/x/cancel", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	body := domain.MarkPaidRequest{PaymentMethod: domain.PaymentMethodPix}
	h.invoices.MarkPaid(rr, h.request(t, http.MethodPost, "/invoices/x/pay", body, params))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	h.invoices.GetByID(rr, h.request(t, http.MethodGet, "/invoices/x", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.InvoiceDTO
	decode(t, rr, &got)
	assert.Equal(t, domain.InvoiceStatusCancelled, got.Status)
}
