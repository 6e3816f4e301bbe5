package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/testutil"
	"gorm.io/gorm"
)

type workOrderFixture struct {
	db       *gorm.DB
	repo     *repository.WorkOrderRepository
	customer *domain.Customer
	vehicle  *domain.Vehicle
}

func setupWorkOrderFixture(t *testing.T) *workOrderFixture {
	db := testutil.SetupTestDB(t)
	customer := testutil.CreateTestCustomer(t, db, "Maria Silva")
	return &workOrderFixture{
		db:       db,
		repo:     repository.NewWorkOrderRepository(db),
		customer: customer,
		vehicle:  testutil.CreateTestVehicle(t, db, customer.ID),
	}
}

func (f *workOrderFixture) create(t *testing.T, number string, status domain.WorkOrderStatus, estimated *time.Time) *domain.WorkOrder {
	t.Helper()
	wo := &domain.WorkOrder{
		OrderNumber:         number,
		CustomerID:          f.customer.ID,
		VehicleID:           f.vehicle.ID,
		Status:              status,
		ProblemDescription:  "Barulho na suspensão",
		EstimatedCompletion: estimated,
		TotalAmount:         decimal.Zero,
	}
	require.NoError(t, f.repo.Create(context.Background(), wo))
	return wo
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestWorkOrderRepository_GetByIDLoadsDetails(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()
	wo := f.create(t, "OS-2024-00001", domain.StatusAwaiting, nil)

	got, err := f.repo.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	require.NotNil(t, got.Vehicle)
	assert.Equal(t, "Maria Silva", got.Customer.Name)
	assert.Equal(t, f.vehicle.Plate, got.Vehicle.Plate)
	assert.Nil(t, got.Mechanic)

	_, err = f.repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWorkOrderRepository_ListFiltersIntersect(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()

	f.create(t, "OS-2024-00001", domain.StatusInProgress, day(2024, time.March, 10))
	f.create(t, "OS-2024-00002", domain.StatusInProgress, day(2024, time.April, 10))
	f.create(t, "OS-2024-00003", domain.StatusAwaiting, day(2024, time.March, 12))
	f.create(t, "OS-2024-00004", domain.StatusInProgress, nil)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	orders, total, err := f.repo.List(ctx, repository.WorkOrderFilter{
		Status:   domain.StatusInProgress,
		DateFrom: &from,
		DateTo:   &to,
	}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "OS-2024-00001", orders[0].OrderNumber)

	_, total, err = f.repo.List(ctx, repository.WorkOrderFilter{Status: domain.StatusInProgress}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, total, err = f.repo.List(ctx, repository.WorkOrderFilter{DateFrom: &from, DateTo: &to}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestWorkOrderRepository_ListSearch(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()

	other := testutil.CreateTestCustomer(t, f.db, "João Pereira")
	otherVehicle := testutil.CreateTestVehicle(t, f.db, other.ID)
	require.NoError(t, f.repo.Create(ctx, &domain.WorkOrder{
		OrderNumber:        "OS-2024-00010",
		CustomerID:         other.ID,
		VehicleID:          otherVehicle.ID,
		Status:             domain.StatusAwaiting,
		ProblemDescription: "Troca de óleo",
	}))
	f.create(t, "OS-2024-00011", domain.StatusAwaiting, nil)

	orders, total, err := f.repo.List(ctx, repository.WorkOrderFilter{Search: "maria"}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "OS-2024-00011", orders[0].OrderNumber)

	_, total, err = f.repo.List(ctx, repository.WorkOrderFilter{Search: otherVehicle.Plate}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// wildcards in the search term are literal
	_, total, err = f.repo.List(ctx, repository.WorkOrderFilter{Search: "%"}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestWorkOrderRepository_ListByService(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()

	alignment := testutil.CreateTestCatalogService(t, f.db, "Alinhamento", "80")
	wo := f.create(t, "OS-2024-00001", domain.StatusAwaiting, nil)
	f.create(t, "OS-2024-00002", domain.StatusAwaiting, nil)

	require.NoError(t, f.repo.AddServiceLine(ctx, &domain.WorkOrderServiceLine{
		WorkOrderID: wo.ID,
		ServiceID:   alignment.ID,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   alignment.BasePrice,
		TotalPrice:  alignment.BasePrice,
	}))

	orders, total, err := f.repo.List(ctx, repository.WorkOrderFilter{Service: "alinha"}, repository.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, wo.ID, orders[0].ID)
}

func TestWorkOrderRepository_LinesAndTotal(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()
	wo := f.create(t, "OS-2024-00001", domain.StatusAwaiting, nil)

	svc := testutil.CreateTestCatalogService(t, f.db, "Alinhamento", "80")
	item := testutil.CreateTestInventoryItem(t, f.db, "Filtro de óleo", "35.50", 10, 2)

	first := &domain.WorkOrderServiceLine{WorkOrderID: wo.ID, ServiceID: svc.ID, Quantity: decimal.NewFromInt(1), UnitPrice: svc.BasePrice, TotalPrice: svc.BasePrice}
	second := &domain.WorkOrderServiceLine{WorkOrderID: wo.ID, ServiceID: svc.ID, Quantity: decimal.NewFromInt(1), UnitPrice: svc.BasePrice, TotalPrice: svc.BasePrice}
	require.NoError(t, f.repo.AddServiceLine(ctx, first))
	require.NoError(t, f.repo.AddServiceLine(ctx, second))
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	part := &domain.WorkOrderPartLine{WorkOrderID: wo.ID, ItemID: item.ID, Quantity: 2, UnitPrice: item.UnitPrice, TotalPrice: decimal.RequireFromString("71"), InStock: true}
	require.NoError(t, f.repo.AddPartLine(ctx, part))

	total, err := f.repo.RecalculateTotal(ctx, wo.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("231").Equal(total), total.String())

	affected, err := f.repo.RemoveServiceLine(ctx, wo.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// a line id from another order removes nothing
	affected, err = f.repo.RemovePartLine(ctx, uuid.New(), part.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	total, err = f.repo.RecalculateTotal(ctx, wo.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("151").Equal(total), total.String())

	got, err := f.repo.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(got.TotalAmount))
	require.Len(t, got.Services, 1)
	require.Len(t, got.Parts, 1)
	require.NotNil(t, got.Parts[0].Item)
	assert.Equal(t, "Filtro de óleo", got.Parts[0].Item.Name)
}

func TestWorkOrderRepository_DeleteRemovesLines(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()
	wo := f.create(t, "OS-2024-00001", domain.StatusAwaiting, nil)
	svc := testutil.CreateTestCatalogService(t, f.db, "Balanceamento", "60")
	require.NoError(t, f.repo.AddServiceLine(ctx, &domain.WorkOrderServiceLine{
		WorkOrderID: wo.ID, ServiceID: svc.ID, Quantity: decimal.NewFromInt(1), UnitPrice: svc.BasePrice, TotalPrice: svc.BasePrice,
	}))

	affected, err := f.repo.Delete(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var lines int64
	require.NoError(t, f.db.Model(&domain.WorkOrderServiceLine{}).Where("work_order_id = ?", wo.ID).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestWorkOrderRepository_CountByStatus(t *testing.T) {
	f := setupWorkOrderFixture(t)

	f.create(t, "OS-2024-00001", domain.StatusAwaiting, nil)
	f.create(t, "OS-2024-00002", domain.StatusAwaiting, nil)
	f.create(t, "OS-2024-00003", domain.StatusCompleted, nil)

	counts, err := f.repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusAwaiting])
	assert.Equal(t, int64(1), counts[domain.StatusCompleted])
	assert.Zero(t, counts[domain.StatusCancelled])
}

func TestWorkOrderRepository_UpdateFields(t *testing.T) {
	f := setupWorkOrderFixture(t)
	ctx := context.Background()
	wo := f.create(t, "OS-2024-00001", domain.StatusAwaiting, nil)

	affected, err := f.repo.UpdateFields(ctx, wo.ID, map[string]interface{}{"status": domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := f.repo.GetHeader(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}
