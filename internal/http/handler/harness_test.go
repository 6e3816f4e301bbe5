package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/http/handler"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/storage"
	"github.com/tigerapp/oficina-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type handlers struct {
	db      *gorm.DB
	manager *domain.User

	auth       *handler.AuthHandler
	customers  *handler.CustomerHandler
	inventory  *handler.InventoryHandler
	workOrders *handler.WorkOrderHandler
	invoices   *handler.InvoiceHandler
	dashboard  *handler.DashboardHandler
	reports    *handler.ReportHandler
}

func setupHandlers(t *testing.T) *handlers {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)

	tokens, err := auth.NewTokenManager("test-secret", "oficina-api", time.Hour)
	require.NoError(t, err)
	sessions := auth.NewDBSessionStore(repository.NewSessionRepository(db))
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	workOrderService := service.NewWorkOrderService(db, workOrderRepo, repository.NewWorkOrderHistoryRepository(db),
		customerRepo, vehicleRepo, userRepo, catalogRepo, inventoryRepo, invoiceRepo, numbers, logger)
	invoiceService := service.NewInvoiceService(db, invoiceRepo, workOrderRepo, customerRepo, numbers, logger)
	authService := service.NewAuthService(db, userRepo, repository.NewPasswordResetRepository(db), sessions, tokens,
		auth.NewHasher(4), auth.NewSignInThrottle(5, 5), time.Hour, logger)

	return &handlers{
		db:         db,
		manager:    testutil.CreateTestUser(t, db, "Gerente Teste", domain.RoleManager),
		auth:       handler.NewAuthHandler(authService, logger),
		customers:  handler.NewCustomerHandler(service.NewCustomerService(customerRepo, vehicleRepo, workOrderRepo, invoiceRepo, logger), logger),
		inventory:  handler.NewInventoryHandler(service.NewInventoryService(inventoryRepo, logger), logger),
		workOrders: handler.NewWorkOrderHandler(workOrderService, invoiceService, logger),
		invoices:   handler.NewInvoiceHandler(invoiceService, logger),
		dashboard:  handler.NewDashboardHandler(service.NewDashboardService(workOrderRepo, invoiceRepo, inventoryRepo, customerRepo, logger), logger),
		reports:    handler.NewReportHandler(service.NewReportService(invoiceRepo, store, logger), logger),
	}
}

func (h *handlers) ctx() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      h.manager.ID,
		DisplayName: h.manager.FullName,
		Email:       h.manager.Email,
		Role:        domain.RoleManager,
		Method:      auth.AuthMethodSession,
	})
}

// request builds a request acting as the manager with the given chi URL params
func (h *handlers) request(t *testing.T, method, target string, body interface{}, params map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(h.ctx(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}
