package mapper

import (
	"fmt"
	"time"

	"github.com/tigerapp/oficina-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	dto := domain.CustomerDTO{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		AltPhone:      c.AltPhone,
		Email:         c.Email,
		TaxID:         c.TaxID,
		IDNumber:      c.IDNumber,
		DriverLicense: c.DriverLicense,
		Address: domain.AddressDTO{
			Street:       c.Street,
			Number:       c.Number,
			Complement:   c.Complement,
			Neighborhood: c.Neighborhood,
			City:         c.City,
			State:        c.State,
			PostalCode:   c.PostalCode,
		},
		BirthDate:     formatDatePtr(c.BirthDate),
		Notes:         c.Notes,
		Status:        c.Status,
		TotalServices: c.TotalServices,
		TotalSpent:    c.TotalSpent,
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
	for i := range c.Vehicles {
		dto.Vehicles = append(dto.Vehicles, ToVehicleDTO(&c.Vehicles[i]))
	}
	return dto
}

// ToVehicleDTO converts Vehicle to VehicleDTO
func ToVehicleDTO(v *domain.Vehicle) domain.VehicleDTO {
	dto := domain.VehicleDTO{
		ID:            v.ID,
		CustomerID:    v.CustomerID,
		Brand:         v.Brand,
		Model:         v.Model,
		Year:          v.Year,
		Plate:         v.Plate,
		Color:         v.Color,
		FuelType:      v.FuelType,
		Chassis:       v.Chassis,
		Mileage:       v.Mileage,
		Status:        v.Status,
		LastService:   formatTimePtr(v.LastService),
		TotalServices: v.TotalServices,
		Notes:         v.Notes,
		CreatedAt:     formatTime(v.CreatedAt),
	}
	if v.Customer != nil {
		dto.CustomerName = v.Customer.Name
	}
	return dto
}

// VehicleDescription renders "Brand Model Year"
func VehicleDescription(v *domain.Vehicle) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %d", v.Brand, v.Model, v.Year)
}

// ToUserDTO converts User to UserDTO; the password hash never leaves this package
func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
	}
}

func ToCatalogServiceDTO(s *domain.CatalogService) domain.CatalogServiceDTO {
	return domain.CatalogServiceDTO{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.Description,
		Category:       s.Category,
		BasePrice:      s.BasePrice,
		EstimatedHours: s.EstimatedHours,
		IsActive:       s.IsActive,
	}
}

// ToInventoryItemDTO includes the derived stock level
func ToInventoryItemDTO(i *domain.InventoryItem) domain.InventoryItemDTO {
	return domain.InventoryItemDTO{
		ID:           i.ID,
		Code:         i.Code,
		Name:         i.Name,
		Description:  i.Description,
		Category:     i.Category,
		Brand:        i.Brand,
		Model:        i.Model,
		CurrentStock: i.CurrentStock,
		MinimumStock: i.MinimumStock,
		UnitPrice:    i.UnitPrice,
		Supplier:     i.Supplier,
		Location:     i.Location,
		StockLevel:   i.StockLevel(),
		LastUpdated:  formatTime(i.UpdatedAt),
	}
}

// ToWorkOrderDTO converts a joined WorkOrder. History is emitted in the order loaded.
func ToWorkOrderDTO(wo *domain.WorkOrder) domain.WorkOrderDTO {
	dto := domain.WorkOrderDTO{
		ID:                   wo.ID,
		OrderNumber:          wo.OrderNumber,
		CustomerID:           wo.CustomerID,
		VehicleID:            wo.VehicleID,
		MechanicID:           wo.MechanicID,
		Status:               wo.Status,
		AvailableTransitions: domain.AvailableTransitions(wo.Status),
		ProblemDescription:   wo.ProblemDescription,
		EstimatedCompletion:  formatDatePtr(wo.EstimatedCompletion),
		CompletedAt:          formatTimePtr(wo.CompletedAt),
		TotalValue:           wo.TotalAmount,
		Services:             make([]domain.WorkOrderServiceLineDTO, 0, len(wo.Services)),
		Parts:                make([]domain.WorkOrderPartLineDTO, 0, len(wo.Parts)),
		History:              make([]domain.WorkOrderHistoryDTO, 0, len(wo.History)),
		CreatedAt:            formatTime(wo.CreatedAt),
		UpdatedAt:            formatTime(wo.UpdatedAt),
	}
	if wo.Customer != nil {
		dto.CustomerName = wo.Customer.Name
		dto.CustomerPhone = wo.Customer.Phone
	}
	if wo.Vehicle != nil {
		dto.VehicleDescription = VehicleDescription(wo.Vehicle)
		dto.VehiclePlate = wo.Vehicle.Plate
	}
	if wo.Mechanic != nil {
		dto.MechanicName = wo.Mechanic.FullName
	}

	for _, s := range wo.Services {
		line := domain.WorkOrderServiceLineDTO{
			ID:         s.ID,
			ServiceID:  s.ServiceID,
			Quantity:   s.Quantity,
			UnitPrice:  s.UnitPrice,
			TotalPrice: s.TotalPrice,
		}
		if s.Service != nil {
			line.ServiceName = s.Service.Name
		}
		dto.Services = append(dto.Services, line)
	}
	for _, p := range wo.Parts {
		line := domain.WorkOrderPartLineDTO{
			ID:         p.ID,
			ItemID:     p.ItemID,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: p.TotalPrice,
			InStock:    p.InStock,
		}
		if p.Item != nil {
			line.ItemCode = p.Item.Code
			line.ItemName = p.Item.Name
		}
		dto.Parts = append(dto.Parts, line)
	}
	for i := range wo.History {
		dto.History = append(dto.History, ToWorkOrderHistoryDTO(&wo.History[i]))
	}
	return dto
}

func ToWorkOrderHistoryDTO(h *domain.WorkOrderHistory) domain.WorkOrderHistoryDTO {
	dto := domain.WorkOrderHistoryDTO{
		ID:          h.ID,
		Action:      h.Action,
		Description: h.Description,
		FromStatus:  h.FromStatus,
		ToStatus:    h.ToStatus,
		PerformedBy: h.PerformedName,
		Timestamp:   formatTime(h.CreatedAt),
	}
	if h.PerformedBy != nil {
		dto.PerformedBy = h.PerformedBy.FullName
	}
	return dto
}

// ToInvoiceDTO converts Invoice to InvoiceDTO and flags negative totals
func ToInvoiceDTO(inv *domain.Invoice) domain.InvoiceDTO {
	dto := domain.InvoiceDTO{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		WorkOrderID:    inv.WorkOrderID,
		CustomerID:     inv.CustomerID,
		Type:           inv.Type,
		Status:         inv.Status,
		IssueDate:      inv.IssueDate.Format(dateLayout),
		DueDate:        formatDatePtr(inv.DueDate),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		TotalAmount:    inv.TotalAmount,
		NegativeTotal:  inv.TotalAmount.IsNegative(),
		PaymentMethod:  inv.PaymentMethod,
		PaidAt:         formatTimePtr(inv.PaidAt),
		Notes:          inv.Notes,
		CreatedAt:      formatTime(inv.CreatedAt),
	}
	if inv.Customer != nil {
		dto.CustomerName = inv.Customer.Name
	}
	if inv.CreatedBy != nil {
		dto.CreatedByName = inv.CreatedBy.FullName
	}
	if inv.WorkOrder != nil {
		dto.OrderNumber = inv.WorkOrder.OrderNumber
	}
	return dto
}

// ToCustomerFinancialSummaryDTO formats month buckets as YYYY-MM
func ToCustomerFinancialSummaryDTO(c *domain.Customer, f domain.CustomerFinancials) domain.CustomerFinancialSummaryDTO {
	dto := domain.CustomerFinancialSummaryDTO{
		CustomerID:          c.ID,
		TotalSpent:          f.TotalSpent,
		TotalServices:       f.TotalServices,
		AverageTicket:       f.AverageTicket,
		ThisYear:            f.ThisYear,
		ThisMonth:           f.ThisMonth,
		LastSixMonths:       make([]domain.MonthlySpendingDTO, 0, len(f.LastSixMonths)),
		PaymentDistribution: f.PaymentDistribution,
		LastPaymentAt:       formatTimePtr(f.LastPaymentAt),
	}
	for _, m := range f.LastSixMonths {
		dto.LastSixMonths = append(dto.LastSixMonths, domain.MonthlySpendingDTO{
			Month:  fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)),
			Amount: m.Amount,
		})
	}
	return dto
}

// ToDashboardDTO converts dashboard KPIs for the given range
func ToDashboardDTO(d domain.Dashboard, from, to time.Time) domain.DashboardDTO {
	dto := domain.DashboardDTO{
		WorkOrdersByStatus: d.WorkOrdersByStatus,
		OpenWorkOrders:     d.OpenWorkOrders,
		Revenue:            d.Revenue,
		Outstanding:        d.Outstanding,
		PaidInvoices:       d.PaidCount,
		AverageTicket:      d.AverageTicket,
		RevenueByMethod:    d.RevenueByMethod,
		StockAlerts:        ToStockAlertDTOs(d.StockAlerts),
		CustomerCount:      d.CustomerCount,
		From:               from.Format(dateLayout),
		To:                 to.Format(dateLayout),
	}
	return dto
}

func ToStockAlertDTOs(alerts []domain.StockAlert) []domain.StockAlertDTO {
	out := make([]domain.StockAlertDTO, len(alerts))
	for i, a := range alerts {
		out[i] = domain.StockAlertDTO(a)
	}
	return out
}
