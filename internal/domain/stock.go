package domain

// StockLevel classifies an inventory item against its minimum stock
type StockLevel string

const (
	StockOut      StockLevel = "out"
	StockCritical StockLevel = "critical"
	StockLow      StockLevel = "low"
	StockNormal   StockLevel = "normal"
)

// ClassifyStock: 0 units is out, up to the minimum is critical, up to twice
// the minimum is low, anything above is normal.
func ClassifyStock(current, minimum int) StockLevel {
	switch {
	case current <= 0:
		return StockOut
	case current <= minimum:
		return StockCritical
	case current <= 2*minimum:
		return StockLow
	default:
		return StockNormal
	}
}

// IsLowStock matches the inventory alert filter (current <= minimum)
func IsLowStock(current, minimum int) bool {
	return current <= minimum
}

// StockLevel of the item
func (i *InventoryItem) StockLevel() StockLevel {
	return ClassifyStock(i.CurrentStock, i.MinimumStock)
}
