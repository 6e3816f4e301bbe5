package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceTotal(t *testing.T) {
	assert.True(t, dec("300").Equal(domain.InvoiceTotal(dec("350"), decimal.Zero, dec("50"))))
	assert.True(t, dec("115.50").Equal(domain.InvoiceTotal(dec("100"), dec("15.5"), decimal.Zero)))
	assert.Equal(t, "0.11", domain.InvoiceTotal(dec("0.105"), decimal.Zero, decimal.Zero).String())
}

func TestLineTotal(t *testing.T) {
	assert.True(t, dec("80").Equal(domain.LineTotal(dec("1"), dec("80"))))
	assert.True(t, dec("37.5").Equal(domain.LineTotal(dec("1.5"), dec("25"))))
}

func TestWorkOrderTotal(t *testing.T) {
	services := []domain.WorkOrderServiceLine{{TotalPrice: dec("80")}, {TotalPrice: dec("120.10")}}
	parts := []domain.WorkOrderPartLine{{TotalPrice: dec("45.90")}}
	assert.True(t, dec("246").Equal(domain.WorkOrderTotal(services, parts)))
	assert.True(t, decimal.Zero.Equal(domain.WorkOrderTotal(nil, nil)))
}

func TestSummarizeCustomerFinancials(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	entries := []domain.SpendingEntry{
		{Date: time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC), Amount: dec("300"), PaymentMethod: "pix"},
		{Date: time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC), Amount: dec("150"), PaymentMethod: "cash"},
		{Date: time.Date(2023, time.November, 5, 10, 0, 0, 0, time.UTC), Amount: dec("100"), PaymentMethod: ""},
		{Date: time.Date(2023, time.June, 1, 10, 0, 0, 0, time.UTC), Amount: dec("50"), PaymentMethod: "pix"},
	}

	summary := domain.SummarizeCustomerFinancials(entries, dec("600"), 4, now)

	assert.True(t, dec("600").Equal(summary.TotalSpent))
	assert.Equal(t, 4, summary.TotalServices)
	assert.True(t, dec("150").Equal(summary.AverageTicket))
	assert.True(t, dec("450").Equal(summary.ThisYear))
	assert.True(t, dec("300").Equal(summary.ThisMonth))

	require.Len(t, summary.LastSixMonths, 6)
	assert.Equal(t, time.October, summary.LastSixMonths[0].Month)
	assert.Equal(t, 2023, summary.LastSixMonths[0].Year)
	assert.Equal(t, time.March, summary.LastSixMonths[5].Month)
	assert.True(t, dec("100").Equal(summary.LastSixMonths[1].Amount))
	assert.True(t, dec("150").Equal(summary.LastSixMonths[3].Amount))
	assert.True(t, dec("300").Equal(summary.LastSixMonths[5].Amount))

	require.Len(t, summary.PaymentDistribution, 3)
	assert.True(t, dec("350").Equal(summary.PaymentDistribution["pix"]))
	assert.True(t, dec("150").Equal(summary.PaymentDistribution["cash"]))
	assert.True(t, dec("100").Equal(summary.PaymentDistribution[domain.UnspecifiedPaymentMethod]))
	require.NotNil(t, summary.LastPaymentAt)
	assert.Equal(t, entries[0].Date, *summary.LastPaymentAt)
}

func TestSummarizeCustomerFinancials_NoPayments(t *testing.T) {
	summary := domain.SummarizeCustomerFinancials(nil, decimal.Zero, 0, time.Now())

	assert.True(t, summary.AverageTicket.IsZero())
	assert.Len(t, summary.LastSixMonths, 6)
	assert.Empty(t, summary.PaymentDistribution)
	assert.Nil(t, summary.LastPaymentAt)
}

func TestBuildDashboard(t *testing.T) {
	pix := domain.PaymentMethodPix
	card := domain.PaymentMethodCard

	snapshot := domain.DashboardSnapshot{
		StatusCounts: map[domain.WorkOrderStatus]int64{
			domain.StatusAwaiting:      3,
			domain.StatusInProgress:    2,
			domain.StatusAwaitingParts: 1,
			domain.StatusCompleted:     7,
			domain.StatusCancelled:     1,
		},
		PaidInvoices: []domain.Invoice{
			{TotalAmount: dec("300"), PaymentMethod: &pix},
			{TotalAmount: dec("200"), PaymentMethod: &card},
			{TotalAmount: dec("100")},
		},
		OpenInvoices: []domain.Invoice{{TotalAmount: dec("80")}, {TotalAmount: dec("20.5")}},
		Inventory: []domain.InventoryItem{
			{BaseModel: domain.BaseModel{ID: uuid.New()}, Code: "FLT-01", Name: "Filtro de óleo", CurrentStock: 2, MinimumStock: 5},
			{BaseModel: domain.BaseModel{ID: uuid.New()}, Code: "PST-01", Name: "Pastilha de freio", CurrentStock: 0, MinimumStock: 4},
			{BaseModel: domain.BaseModel{ID: uuid.New()}, Code: "OLE-01", Name: "Óleo 5W30", CurrentStock: 8, MinimumStock: 5},
		},
		CustomerCount: 12,
	}

	d := domain.BuildDashboard(snapshot)

	assert.Equal(t, int64(6), d.OpenWorkOrders)
	assert.Equal(t, int64(0), d.WorkOrdersByStatus[domain.StatusAwaitingCustomer])
	assert.Len(t, d.WorkOrdersByStatus, len(domain.AllWorkOrderStatuses))
	assert.True(t, dec("600").Equal(d.Revenue))
	assert.Equal(t, 3, d.PaidCount)
	assert.True(t, dec("200").Equal(d.AverageTicket))
	assert.True(t, dec("100.5").Equal(d.Outstanding))
	assert.True(t, dec("100").Equal(d.RevenueByMethod[domain.UnspecifiedPaymentMethod]))
	assert.Equal(t, int64(12), d.CustomerCount)

	require.Len(t, d.StockAlerts, 2)
	assert.Equal(t, "PST-01", d.StockAlerts[0].Code)
	assert.Equal(t, domain.StockOut, d.StockAlerts[0].Level)
	assert.Equal(t, domain.StockCritical, d.StockAlerts[1].Level)
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := domain.BuildDashboard(domain.DashboardSnapshot{})

	assert.True(t, d.Revenue.IsZero())
	assert.True(t, d.AverageTicket.IsZero())
	assert.NotNil(t, d.StockAlerts)
	assert.Empty(t, d.StockAlerts)
}
