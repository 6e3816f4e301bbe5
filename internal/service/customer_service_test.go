package service_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/testutil"
)

func TestCustomerService_CreateAndUpdate(t *testing.T) {
	s := newShop(t)

	created, err := s.customers.Create(s.ctx(), &domain.CreateCustomerRequest{
		Name:  "  Maria Silva ",
		Phone: "(11) 98765-4321",
		Email: "Maria.Silva@Example.com",
		Address: domain.AddressDTO{
			Street: "Rua das Flores",
			Number: "120",
			City:   "São Paulo",
			State:  "sp",
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Maria Silva", created.Name)
	assert.Equal(t, "maria.silva@example.com", created.Email)
	assert.Equal(t, "SP", created.Address.State)
	assert.Equal(t, domain.CustomerStatusActive, created.Status)
	assert.Zero(t, created.TotalServices)

	updated, err := s.customers.Update(s.ctx(), created.ID, &domain.UpdateCustomerRequest{
		Name:   "Maria Silva Santos",
		Phone:  "(11) 98765-4321",
		Status: domain.CustomerStatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva Santos", updated.Name)
	assert.Equal(t, domain.CustomerStatusInactive, updated.Status)

	_, err = s.customers.Update(s.ctx(), uuid.New(), &domain.UpdateCustomerRequest{Name: "x", Phone: "1"})
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestCustomerService_List(t *testing.T) {
	s := newShop(t)
	testutil.CreateTestCustomer(t, s.db, "Maria Silva")
	testutil.CreateTestCustomer(t, s.db, "João Souza")

	page, err := s.customers.List(s.ctx(), repository.CustomerFilter{Search: "silva"}, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	customers := page.Data.([]domain.CustomerDTO)
	assert.Equal(t, "Maria Silva", customers[0].Name)
}

func TestCustomerService_Delete(t *testing.T) {
	s := newShop(t)
	customer := testutil.CreateTestCustomer(t, s.db, "Maria Silva")
	testutil.CreateTestVehicle(t, s.db, customer.ID)

	require.NoError(t, s.customers.Delete(s.ctx(), customer.ID))

	_, err := s.customers.GetByID(s.ctx(), customer.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	var vehicles int64
	require.NoError(t, s.db.Model(&domain.Vehicle{}).Where("customer_id = ?", customer.ID).Count(&vehicles).Error)
	assert.Zero(t, vehicles)

	assert.True(t, errors.Is(s.customers.Delete(s.ctx(), customer.ID), service.ErrNotFound))
}

func TestCustomerService_Delete_WithWorkOrders(t *testing.T) {
	s := newShop(t)
	customer, _ := s.openOrder(t, "80.00")

	err := s.customers.Delete(s.ctx(), customer.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	_, err = s.customers.GetByID(s.ctx(), customer.ID)
	assert.NoError(t, err)
}

func TestCustomerService_VehiclesAndWorkOrders(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "80.00")
	testutil.CreateTestVehicle(t, s.db, customer.ID)

	vehicles, err := s.customers.Vehicles(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
	assert.Equal(t, "Maria Silva", vehicles[0].CustomerName)

	orders, err := s.customers.WorkOrders(s.ctx(), customer.ID, repository.NewPage(1, 10))
	require.NoError(t, err)
	require.Equal(t, int64(1), orders.Total)
	assert.Equal(t, wo.ID, orders.Data.([]domain.WorkOrderDTO)[0].ID)

	_, err = s.customers.WorkOrders(s.ctx(), uuid.New(), repository.NewPage(1, 10))
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestCustomerService_FinancialSummary(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "350.00")
	s.moveTo(t, wo.ID, domain.StatusInProgress, domain.StatusCompleted)

	_, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:    wo.ID,
		CustomerID:     customer.ID,
		Type:           domain.InvoiceTypeReceipt,
		Subtotal:       dec("350.00"),
		DiscountAmount: dec("50.00"),
		PaymentMethod:  pix(),
	})
	require.NoError(t, err)

	// open invoices do not count as spending
	_, err = s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("999.00"),
	})
	require.NoError(t, err)

	summary, err := s.customers.FinancialSummary(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, summary.CustomerID)
	assert.Equal(t, "300", summary.TotalSpent.String())
	assert.Equal(t, 1, summary.TotalServices)
	assert.Equal(t, "300", summary.AverageTicket.String())
	assert.Equal(t, "300", summary.ThisMonth.String())
	assert.Equal(t, "300", summary.ThisYear.String())
	assert.Len(t, summary.LastSixMonths, 6)
	assert.Equal(t, "300", summary.PaymentDistribution[string(domain.PaymentMethodPix)].String())
	assert.NotNil(t, summary.LastPaymentAt)

	_, err = s.customers.FinancialSummary(s.ctx(), uuid.New())
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestVehicleService_Create(t *testing.T) {
	s := newShop(t)
	customer := testutil.CreateTestCustomer(t, s.db, "Maria Silva")

	vehicle, err := s.vehicles.Create(s.ctx(), &domain.CreateVehicleRequest{
		CustomerID: customer.ID,
		Brand:      "Fiat",
		Model:      "Uno",
		Year:       2015,
		Plate:      "abc-1d23",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC1D23", vehicle.Plate)
	assert.Equal(t, "Maria Silva", vehicle.CustomerName)
	assert.Equal(t, domain.VehicleStatusActive, vehicle.Status)

	found, err := s.vehicles.GetByPlate(s.ctx(), "ABC 1D23")
	require.NoError(t, err)
	assert.Equal(t, vehicle.ID, found.ID)

	_, err = s.vehicles.Create(s.ctx(), &domain.CreateVehicleRequest{
		CustomerID: customer.ID,
		Brand:      "Fiat",
		Model:      "Palio",
		Year:       2012,
		Plate:      "ABC1D23",
	})
	assert.True(t, errors.Is(err, service.ErrConflict))

	_, err = s.vehicles.Create(s.ctx(), &domain.CreateVehicleRequest{
		CustomerID: uuid.New(),
		Brand:      "Fiat",
		Model:      "Palio",
		Year:       2012,
		Plate:      "XYZ9999",
	})
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestVehicleService_UpdateAndDelete(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "80.00")
	spare := testutil.CreateTestVehicle(t, s.db, customer.ID)

	updated, err := s.vehicles.Update(s.ctx(), spare.ID, &domain.UpdateVehicleRequest{
		CustomerID: customer.ID,
		Brand:      "Volkswagen",
		Model:      "Gol",
		Year:       2018,
		Plate:      spare.Plate,
		Mileage:    45000,
		Status:     domain.VehicleStatusMaintenance,
	})
	require.NoError(t, err)
	assert.Equal(t, 45000, updated.Mileage)
	assert.Equal(t, domain.VehicleStatusMaintenance, updated.Status)

	err = s.vehicles.Delete(s.ctx(), wo.VehicleID)
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	require.NoError(t, s.vehicles.Delete(s.ctx(), spare.ID))
	assert.True(t, errors.Is(s.vehicles.Delete(s.ctx(), spare.ID), service.ErrNotFound))
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC1234", service.NormalizePlate(" abc-1234 "))
	assert.Equal(t, "BRA2E19", service.NormalizePlate("BRA 2E19"))
}
