package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/storage"
	"github.com/tigerapp/oficina-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// shop wires every service over one in-memory database
type shop struct {
	db *gorm.DB

	customers  *service.CustomerService
	vehicles   *service.VehicleService
	catalog    *service.CatalogService
	inventory  *service.InventoryService
	workOrders *service.WorkOrderService
	invoices   *service.InvoiceService
	dashboard  *service.DashboardService
	reports    *service.ReportService
	auth       *service.AuthService
	numbers    *service.NumberSequenceService

	sessions auth.SessionStore
	tokens   *auth.TokenManager
	manager  *domain.User
}

func newShop(t *testing.T) *shop {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	historyRepo := repository.NewWorkOrderHistoryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)

	tokens, err := auth.NewTokenManager("test-secret", "oficina-api", time.Hour)
	require.NoError(t, err)
	sessions := auth.NewDBSessionStore(sessionRepo)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return &shop{
		db:         db,
		customers:  service.NewCustomerService(customerRepo, vehicleRepo, workOrderRepo, invoiceRepo, logger),
		vehicles:   service.NewVehicleService(vehicleRepo, customerRepo, workOrderRepo, logger),
		catalog:    service.NewCatalogService(catalogRepo, logger),
		inventory:  service.NewInventoryService(inventoryRepo, logger),
		workOrders: service.NewWorkOrderService(db, workOrderRepo, historyRepo, customerRepo, vehicleRepo, userRepo, catalogRepo, inventoryRepo, invoiceRepo, numbers, logger),
		invoices:   service.NewInvoiceService(db, invoiceRepo, workOrderRepo, customerRepo, numbers, logger),
		dashboard:  service.NewDashboardService(workOrderRepo, invoiceRepo, inventoryRepo, customerRepo, logger),
		reports:    service.NewReportService(invoiceRepo, store, logger),
		auth:       service.NewAuthService(db, userRepo, resetRepo, sessions, tokens, auth.NewHasher(4), auth.NewSignInThrottle(3, 3), time.Hour, logger),
		numbers:    numbers,
		sessions:   sessions,
		tokens:     tokens,
		manager:    testutil.CreateTestUser(t, db, "Gerente Teste", domain.RoleManager),
	}
}

// ctx returns a context acting as the shop manager
func (s *shop) ctx() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      s.manager.ID,
		DisplayName: s.manager.FullName,
		Email:       s.manager.Email,
		Role:        domain.RoleManager,
		Method:      auth.AuthMethodSession,
	})
}

// openOrder creates a customer, a vehicle and a work order with one service line
func (s *shop) openOrder(t *testing.T, price string) (*domain.Customer, *domain.WorkOrderDTO) {
	t.Helper()
	customer := testutil.CreateTestCustomer(t, s.db, "Maria Silva")
	vehicle := testutil.CreateTestVehicle(t, s.db, customer.ID)
	svc := testutil.CreateTestCatalogService(t, s.db, "Alinhamento", price)

	wo, err := s.workOrders.Create(s.ctx(), &domain.CreateWorkOrderRequest{
		CustomerID:         customer.ID,
		VehicleID:          vehicle.ID,
		ProblemDescription: "Carro puxando para a direita",
		Services:           []domain.ServiceLineInput{{ServiceID: svc.ID}},
	})
	require.NoError(t, err)
	return customer, wo
}

// moveTo walks the order along the lifecycle one step at a time
func (s *shop) moveTo(t *testing.T, id uuid.UUID, statuses ...domain.WorkOrderStatus) *domain.WorkOrderDTO {
	t.Helper()
	var wo *domain.WorkOrderDTO
	for _, st := range statuses {
		status := st
		var err error
		wo, err = s.workOrders.Update(s.ctx(), id, &domain.UpdateWorkOrderRequest{Status: &status})
		require.NoError(t, err, "moving to %s", st)
	}
	return wo
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
