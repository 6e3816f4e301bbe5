package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UnspecifiedPaymentMethod labels payments recorded without a method
const UnspecifiedPaymentMethod = "Não informado"

// InvoiceTotal computes subtotal + tax - discount rounded to cents
func InvoiceTotal(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Sub(discount).Round(2)
}

// LineTotal multiplies quantity by unit price rounded to cents
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// WorkOrderTotal sums the line totals of a loaded work order
func WorkOrderTotal(services []WorkOrderServiceLine, parts []WorkOrderPartLine) decimal.Decimal {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(s.TotalPrice)
	}
	for _, p := range parts {
		total = total.Add(p.TotalPrice)
	}
	return total.Round(2)
}

// SpendingEntry is one payment made by a customer
type SpendingEntry struct {
	Date          time.Time
	Amount        decimal.Decimal
	PaymentMethod string
}

// MonthlySpending is the amount spent in a calendar month
type MonthlySpending struct {
	Year   int
	Month  time.Month
	Amount decimal.Decimal
}

// CustomerFinancials is derived from a customer's payments; never stored
type CustomerFinancials struct {
	TotalSpent          decimal.Decimal
	TotalServices       int
	AverageTicket       decimal.Decimal
	ThisYear            decimal.Decimal
	ThisMonth           decimal.Decimal
	LastSixMonths       []MonthlySpending
	PaymentDistribution map[string]decimal.Decimal
	LastPaymentAt       *time.Time
}

// SummarizeCustomerFinancials builds the financial summary shown on a
// customer's page. totalSpent and totalServices come from the customer record;
// year, month and six-month buckets are computed from entries relative to now.
// LastSixMonths is ordered oldest first and always has six buckets.
func SummarizeCustomerFinancials(entries []SpendingEntry, totalSpent decimal.Decimal, totalServices int, now time.Time) CustomerFinancials {
	out := CustomerFinancials{
		TotalSpent:          totalSpent.Round(2),
		TotalServices:       totalServices,
		AverageTicket:       decimal.Zero,
		ThisYear:            decimal.Zero,
		ThisMonth:           decimal.Zero,
		PaymentDistribution: make(map[string]decimal.Decimal),
	}
	if totalServices > 0 {
		out.AverageTicket = totalSpent.Div(decimal.NewFromInt(int64(totalServices))).Round(2)
	}

	buckets := make([]MonthlySpending, 6)
	index := make(map[[2]int]int, 6)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < 6; i++ {
		m := start.AddDate(0, i-5, 0)
		buckets[i] = MonthlySpending{Year: m.Year(), Month: m.Month(), Amount: decimal.Zero}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}

	for _, e := range entries {
		d := e.Date.In(now.Location())
		if d.Year() == now.Year() {
			out.ThisYear = out.ThisYear.Add(e.Amount)
			if d.Month() == now.Month() {
				out.ThisMonth = out.ThisMonth.Add(e.Amount)
			}
		}
		if i, ok := index[[2]int{d.Year(), int(d.Month())}]; ok {
			buckets[i].Amount = buckets[i].Amount.Add(e.Amount)
		}

		method := e.PaymentMethod
		if method == "" {
			method = UnspecifiedPaymentMethod
		}
		out.PaymentDistribution[method] = out.PaymentDistribution[method].Add(e.Amount)

		if out.LastPaymentAt == nil || e.Date.After(*out.LastPaymentAt) {
			date := e.Date
			out.LastPaymentAt = &date
		}
	}

	out.ThisYear = out.ThisYear.Round(2)
	out.ThisMonth = out.ThisMonth.Round(2)
	for method, amount := range out.PaymentDistribution {
		out.PaymentDistribution[method] = amount.Round(2)
	}
	out.LastSixMonths = buckets
	return out
}

// DashboardSnapshot is the input for BuildDashboard
type DashboardSnapshot struct {
	StatusCounts  map[WorkOrderStatus]int64
	PaidInvoices  []Invoice
	OpenInvoices  []Invoice
	Inventory     []InventoryItem
	CustomerCount int64
}

// Dashboard holds the KPIs shown on the main screen
type Dashboard struct {
	WorkOrdersByStatus map[WorkOrderStatus]int64
	OpenWorkOrders     int64
	Revenue            decimal.Decimal
	Outstanding        decimal.Decimal
	PaidCount          int
	AverageTicket      decimal.Decimal
	RevenueByMethod    map[string]decimal.Decimal
	StockAlerts        []StockAlert
	CustomerCount      int64
}

// StockAlert flags an item that is out of stock or at/below minimum
type StockAlert struct {
	ItemID       string
	Code         string
	Name         string
	CurrentStock int
	MinimumStock int
	Level        StockLevel
}

// BuildDashboard aggregates already-fetched records into dashboard KPIs
func BuildDashboard(s DashboardSnapshot) Dashboard {
	d := Dashboard{
		WorkOrdersByStatus: make(map[WorkOrderStatus]int64, len(AllWorkOrderStatuses)),
		Revenue:            decimal.Zero,
		Outstanding:        decimal.Zero,
		AverageTicket:      decimal.Zero,
		RevenueByMethod:    make(map[string]decimal.Decimal),
		StockAlerts:        []StockAlert{},
		CustomerCount:      s.CustomerCount,
	}
	for _, st := range AllWorkOrderStatuses {
		n := s.StatusCounts[st]
		d.WorkOrdersByStatus[st] = n
		if !st.IsTerminal() {
			d.OpenWorkOrders += n
		}
	}

	for _, inv := range s.PaidInvoices {
		d.Revenue = d.Revenue.Add(inv.TotalAmount)
		method := UnspecifiedPaymentMethod
		if inv.PaymentMethod != nil {
			method = string(*inv.PaymentMethod)
		}
		d.RevenueByMethod[method] = d.RevenueByMethod[method].Add(inv.TotalAmount)
	}
	d.PaidCount = len(s.PaidInvoices)
	if d.PaidCount > 0 {
		d.AverageTicket = d.Revenue.Div(decimal.NewFromInt(int64(d.PaidCount))).Round(2)
	}
	d.Revenue = d.Revenue.Round(2)

	for _, inv := range s.OpenInvoices {
		d.Outstanding = d.Outstanding.Add(inv.TotalAmount)
	}
	d.Outstanding = d.Outstanding.Round(2)

	for _, item := range s.Inventory {
		level := item.StockLevel()
		if level != StockOut && level != StockCritical {
			continue
		}
		d.StockAlerts = append(d.StockAlerts, StockAlert{
			ItemID:       item.ID.String(),
			Code:         item.Code,
			Name:         item.Name,
			CurrentStock: item.CurrentStock,
			MinimumStock: item.MinimumStock,
			Level:        level,
		})
	}
	sort.SliceStable(d.StockAlerts, func(i, j int) bool {
		return d.StockAlerts[i].CurrentStock < d.StockAlerts[j].CurrentStock
	})
	return d
}
