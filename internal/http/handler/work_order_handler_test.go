package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/testutil"
)

// createOrder opens a work order through the handler and returns it
func createOrder(t *testing.T, h *handlers, price string) *domain.WorkOrderDTO {
	t.Helper()
	customer := testutil.CreateTestCustomer(t, h.db, "João Souza")
	vehicle := testutil.CreateTestVehicle(t, h.db, customer.ID)
	svc := testutil.CreateTestCatalogService(t, h.db, "Troca de óleo", price)

	body := domain.CreateWorkOrderRequest{
		CustomerID:         customer.ID,
		VehicleID:          vehicle.ID,
		ProblemDescription: "Revisão dos 10 mil km",
		Services:           []domain.ServiceLineInput{{ServiceID: svc.ID}},
	}
	rr := httptest.NewRecorder()
	h.workOrders.Create(rr, h.request(t, http.MethodPost, "/work-orders", body, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var wo domain.WorkOrderDTO
	decode(t, rr, &wo)
	return &wo
}

func patchStatus(t *testing.T, h *handlers, id uuid.UUID, status domain.WorkOrderStatus) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	body := domain.UpdateWorkOrderRequest{Status: &status}
	h.workOrders.Update(rr, h.request(t, http.MethodPatch, "/work-orders/"+id.String(), body, map[string]string{"id": id.String()}))
	return rr
}

func TestWorkOrderHandler_Create(t *testing.T) {
	h := setupHandlers(t)

	t.Run("creates order with number and history", func(t *testing.T) {
		wo := createOrder(t, h, "120.00")
		assert.Equal(t, fmt.Sprintf("OS-%d-001", time.Now().UTC().Year()), wo.OrderNumber)
		assert.Equal(t, domain.StatusAwaiting, wo.Status)
		assert.Equal(t, "120", wo.TotalValue.String())
		require.Len(t, wo.History, 1)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/work-orders", nil)
		req = req.WithContext(h.ctx())
		rr := httptest.NewRecorder()
		h.workOrders.Create(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing customer and vehicle", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.Create(rr, h.request(t, http.MethodPost, "/work-orders", domain.CreateWorkOrderRequest{}, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var problem domain.APIError
		decode(t, rr, &problem)
		assert.Equal(t, domain.ErrorTypeValidation, problem.Type)
		assert.Contains(t, problem.Errors, "customerId")
	})
}

func TestWorkOrderHandler_GetByID(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "80.00")

	t.Run("found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.GetByID(rr, h.request(t, http.MethodGet, "/work-orders/"+wo.ID.String(), nil, map[string]string{"id": wo.ID.String()}))
		assert.Equal(t, http.StatusOK, rr.Code)

		var got domain.WorkOrderDTO
		decode(t, rr, &got)
		assert.Equal(t, wo.OrderNumber, got.OrderNumber)
	})

	t.Run("malformed id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.GetByID(rr, h.request(t, http.MethodGet, "/work-orders/abc", nil, map[string]string{"id": "abc"}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		id := uuid.New().String()
		rr := httptest.NewRecorder()
		h.workOrders.GetByID(rr, h.request(t, http.MethodGet, "/work-orders/"+id, nil, map[string]string{"id": id}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestWorkOrderHandler_Update_Status(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "80.00")

	t.Run("invalid transition is a conflict", func(t *testing.T) {
		rr := patchStatus(t, h, wo.ID, domain.StatusCompleted)
		assert.Equal(t, http.StatusConflict, rr.Code)

		var problem domain.APIError
		decode(t, rr, &problem)
		assert.Equal(t, domain.ErrorTypeInvalidState, problem.Type)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		rr := patchStatus(t, h, wo.ID, domain.WorkOrderStatus("Entregue"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("lifecycle to completion", func(t *testing.T) {
		require.Equal(t, http.StatusOK, patchStatus(t, h, wo.ID, domain.StatusInProgress).Code)
		rr := patchStatus(t, h, wo.ID, domain.StatusCompleted)
		require.Equal(t, http.StatusOK, rr.Code)

		var got domain.WorkOrderDTO
		decode(t, rr, &got)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)
		assert.Empty(t, got.AvailableTransitions)
	})
}

func TestWorkOrderHandler_CheckTransition(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "80.00")
	params := map[string]string{"id": wo.ID.String()}

	t.Run("allowed", func(t *testing.T) {
		target := "/work-orders/x/transition-check?to=" + url.QueryEscape(string(domain.StatusInProgress))
		rr := httptest.NewRecorder()
		h.workOrders.CheckTransition(rr, h.request(t, http.MethodGet, target, nil, params))
		require.Equal(t, http.StatusOK, rr.Code)

		var check domain.TransitionCheckDTO
		decode(t, rr, &check)
		assert.True(t, check.Allowed)
		assert.Equal(t, domain.StatusAwaiting, check.From)
	})

	t.Run("refused", func(t *testing.T) {
		target := "/work-orders/x/transition-check?to=" + url.QueryEscape(string(domain.StatusCompleted))
		rr := httptest.NewRecorder()
		h.workOrders.CheckTransition(rr, h.request(t, http.MethodGet, target, nil, params))
		require.Equal(t, http.StatusOK, rr.Code)

		var check domain.TransitionCheckDTO
		decode(t, rr, &check)
		assert.False(t, check.Allowed)
		assert.NotEmpty(t, check.Reason)
	})

	t.Run("missing target", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.CheckTransition(rr, h.request(t, http.MethodGet, "/work-orders/x/transition-check", nil, params))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestWorkOrderHandler_PartsAndHistory(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "100.00")
	item := testutil.CreateTestInventoryItem(t, h.db, "Filtro de óleo", "35.00", 5, 1)
	params := map[string]string{"id": wo.ID.String()}

	rr := httptest.NewRecorder()
	body := domain.PartLineInput{ItemID: item.ID, Quantity: 2}
	h.workOrders.AddPart(rr, h.request(t, http.MethodPost, "/work-orders/x/parts", body, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got domain.WorkOrderDTO
	decode(t, rr, &got)
	assert.Equal(t, "170", got.TotalValue.String())
	require.Len(t, got.Parts, 1)

	rr = httptest.NewRecorder()
	h.workOrders.AddPart(rr, h.request(t, http.MethodPost, "/work-orders/x/parts", domain.PartLineInput{ItemID: item.ID}, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.workOrders.History(rr, h.request(t, http.MethodGet, "/work-orders/x/history", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	var history []domain.WorkOrderHistoryDTO
	decode(t, rr, &history)
	assert.GreaterOrEqual(t, len(history), 2)
}

func TestWorkOrderHandler_Delete(t *testing.T) {
	h := setupHandlers(t)
	wo := createOrder(t, h, "80.00")
	params := map[string]string{"id": wo.ID.String()}

	rr := httptest.NewRecorder()
	h.workOrders.Delete(rr, h.request(t, http.MethodDelete, "/work-orders/x", nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.workOrders.GetByID(rr, h.request(t, http.MethodGet, "/work-orders/x", nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWorkOrderHandler_List(t *testing.T) {
	h := setupHandlers(t)
	createOrder(t, h, "80.00")
	createOrder(t, h, "90.00")

	t.Run("all", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.List(rr, h.request(t, http.MethodGet, "/work-orders", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var page domain.PaginatedResponse
		decode(t, rr, &page)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("bad mechanic filter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.List(rr, h.request(t, http.MethodGet, "/work-orders?mechanicId=nope", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad date filter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.workOrders.List(rr, h.request(t, http.MethodGet, "/work-orders?dateFrom=31/12/2024", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
