package service_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/testutil"
)

func TestInventoryService_Create(t *testing.T) {
	s := newShop(t)

	item, err := s.inventory.Create(s.ctx(), &domain.CreateInventoryItemRequest{
		Code:         " oleo-5w30 ",
		Name:         "Óleo 5W30",
		CurrentStock: 3,
		MinimumStock: 2,
		UnitPrice:    decimal.RequireFromString("42.90"),
	})
	require.NoError(t, err)
	assert.Equal(t, "OLEO-5W30", item.Code)
	assert.Equal(t, domain.StockLow, item.StockLevel)

	_, err = s.inventory.Create(s.ctx(), &domain.CreateInventoryItemRequest{
		Code: "OLEO-5W30",
		Name: "Duplicado",
	})
	assert.True(t, errors.Is(err, service.ErrConflict))

	_, err = s.inventory.Create(s.ctx(), &domain.CreateInventoryItemRequest{
		Code:         "X",
		Name:         "Negativo",
		CurrentStock: -1,
	})
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "currentStock")
}

func TestInventoryService_AdjustStock(t *testing.T) {
	s := newShop(t)
	item := testutil.CreateTestInventoryItem(t, s.db, "Vela de ignição", "25.00", 4, 2)

	out, err := s.inventory.AdjustStock(s.ctx(), item.ID, &domain.AdjustStockRequest{Delta: -3, Reason: "uso interno"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.CurrentStock)
	assert.Equal(t, domain.StockCritical, out.StockLevel)

	_, err = s.inventory.AdjustStock(s.ctx(), item.ID, &domain.AdjustStockRequest{Delta: -2})
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = s.inventory.AdjustStock(s.ctx(), item.ID, &domain.AdjustStockRequest{Delta: 0})
	assert.True(t, errors.Is(err, service.ErrValidation))

	restocked, err := s.inventory.AdjustStock(s.ctx(), item.ID, &domain.AdjustStockRequest{Delta: 10, Reason: "compra"})
	require.NoError(t, err)
	assert.Equal(t, 11, restocked.CurrentStock)
	assert.Equal(t, domain.StockNormal, restocked.StockLevel)

	_, err = s.inventory.AdjustStock(s.ctx(), uuid.New(), &domain.AdjustStockRequest{Delta: 1})
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestInventoryService_ListAndLowStock(t *testing.T) {
	s := newShop(t)
	testutil.CreateTestInventoryItem(t, s.db, "Filtro de ar", "30.00", 10, 2)
	testutil.CreateTestInventoryItem(t, s.db, "Filtro de óleo", "35.00", 1, 2)
	testutil.CreateTestInventoryItem(t, s.db, "Correia dentada", "180.00", 0, 1)

	low, err := s.inventory.LowStock(s.ctx())
	require.NoError(t, err)
	assert.Len(t, low, 2)

	page, err := s.inventory.List(s.ctx(), repository.InventoryFilter{Search: "filtro"}, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestInventoryService_UpdateAndDelete(t *testing.T) {
	s := newShop(t)
	item := testutil.CreateTestInventoryItem(t, s.db, "Lâmpada H4", "18.00", 6, 2)

	updated, err := s.inventory.Update(s.ctx(), item.ID, &domain.UpdateInventoryItemRequest{
		Code:         item.Code,
		Name:         "Lâmpada H4 60/55W",
		CurrentStock: 6,
		MinimumStock: 4,
		UnitPrice:    decimal.RequireFromString("19.90"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lâmpada H4 60/55W", updated.Name)
	assert.Equal(t, "19.9", updated.UnitPrice.String())
	assert.Equal(t, domain.StockLow, updated.StockLevel)

	require.NoError(t, s.inventory.Delete(s.ctx(), item.ID))
	assert.True(t, errors.Is(s.inventory.Delete(s.ctx(), item.ID), service.ErrNotFound))
}

func TestCatalogService(t *testing.T) {
	s := newShop(t)

	created, err := s.catalog.Create(s.ctx(), &domain.CreateCatalogServiceRequest{
		Name:           "Revisão completa",
		Category:       "Manutenção",
		BasePrice:      decimal.RequireFromString("450.00"),
		EstimatedHours: decimal.RequireFromString("3.5"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	inactive := false
	updated, err := s.catalog.Update(s.ctx(), created.ID, &domain.CreateCatalogServiceRequest{
		Name:      "Revisão completa",
		BasePrice: decimal.RequireFromString("480.00"),
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "480", updated.BasePrice.String())

	testutil.CreateTestCatalogService(t, s.db, "Alinhamento", "80.00")

	active, err := s.catalog.List(s.ctx(), true, "")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := s.catalog.List(s.ctx(), false, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.catalog.Create(s.ctx(), &domain.CreateCatalogServiceRequest{
		Name:      "",
		BasePrice: decimal.RequireFromString("-1"),
	})
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "basePrice")

	require.NoError(t, s.catalog.Delete(s.ctx(), created.ID))
	_, err = s.catalog.GetByID(s.ctx(), created.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestCatalogService_CreateInactive(t *testing.T) {
	s := newShop(t)
	inactive := false

	created, err := s.catalog.Create(s.ctx(), &domain.CreateCatalogServiceRequest{
		Name:      "Polimento",
		BasePrice: decimal.RequireFromString("200.00"),
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	var stored domain.CatalogService
	require.NoError(t, s.db.First(&stored, "id = ?", created.ID).Error)
	assert.False(t, stored.IsActive)

	active, err := s.catalog.List(s.ctx(), true, "")
	require.NoError(t, err)
	assert.Empty(t, active)
}
