package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/config"
	"github.com/tigerapp/oficina-api/internal/database"
	"github.com/tigerapp/oficina-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var counter atomic.Int64

func next() int64 {
	return counter.Add(1)
}

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The pool holds a single connection, so the database lives until the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewDatabase(&config.DatabaseConfig{
		Driver:     "sqlite",
		Name:       "test",
		SQLitePath: ":memory:",
	}, zap.NewNop())
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// CreateTestUser creates an active user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, name string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        fmt.Sprintf("user%d@oficina.test", next()),
		FullName:     name,
		Role:         role,
		PasswordHash: "$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestCustomer creates an active customer
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:       name,
		Phone:      fmt.Sprintf("(11) 9%04d-0000", next()%10000),
		Email:      fmt.Sprintf("cliente%d@example.com", next()),
		Status:     domain.CustomerStatusActive,
		TotalSpent: decimal.Zero,
	}
	require.NoError(t, db.Omit("Vehicles").Create(customer).Error)
	return customer
}

// CreateTestVehicle creates a vehicle for customerID with a unique plate
func CreateTestVehicle(t *testing.T, db *gorm.DB, customerID uuid.UUID) *domain.Vehicle {
	t.Helper()
	vehicle := &domain.Vehicle{
		CustomerID: customerID,
		Brand:      "Volkswagen",
		Model:      "Gol",
		Year:       2018,
		Plate:      fmt.Sprintf("ABC%04d", next()%10000),
		Status:     domain.VehicleStatusActive,
	}
	require.NoError(t, db.Omit("Customer").Create(vehicle).Error)
	return vehicle
}

// CreateTestCatalogService creates an active catalog service
func CreateTestCatalogService(t *testing.T, db *gorm.DB, name string, price string) *domain.CatalogService {
	t.Helper()
	svc := &domain.CatalogService{
		Name:           name,
		Category:       "Manutenção",
		BasePrice:      decimal.RequireFromString(price),
		EstimatedHours: decimal.NewFromInt(1),
		IsActive:       true,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

// CreateTestInventoryItem creates an inventory item with the given stock levels
func CreateTestInventoryItem(t *testing.T, db *gorm.DB, name string, price string, current, minimum int) *domain.InventoryItem {
	t.Helper()
	item := &domain.InventoryItem{
		Code:         fmt.Sprintf("PC-%05d", next()),
		Name:         name,
		Category:     "Peças",
		CurrentStock: current,
		MinimumStock: minimum,
		UnitPrice:    decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
