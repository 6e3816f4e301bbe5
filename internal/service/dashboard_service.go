package service

import (
	"context"
	"time"

	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
)

type DashboardService struct {
	workOrderRepo *repository.WorkOrderRepository
	invoiceRepo   *repository.InvoiceRepository
	inventoryRepo *repository.InventoryRepository
	customerRepo  *repository.CustomerRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewDashboardService(
	workOrderRepo *repository.WorkOrderRepository,
	invoiceRepo *repository.InvoiceRepository,
	inventoryRepo *repository.InventoryRepository,
	customerRepo *repository.CustomerRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		workOrderRepo: workOrderRepo,
		invoiceRepo:   invoiceRepo,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// DashboardRange resolves the reporting window. Missing bounds default to the
// current month up to now; to covers its whole day.
func DashboardRange(from, to *time.Time, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now
	if from != nil {
		start = from.UTC()
	}
	if to != nil {
		t := to.UTC()
		end = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	}
	return start, end
}

// GetMetrics gathers a snapshot and aggregates it. Revenue counts invoices
// paid within the range; outstanding counts every draft or sent invoice.
func (s *DashboardService) GetMetrics(ctx context.Context, from, to *time.Time) (*domain.DashboardDTO, error) {
	start, end := DashboardRange(from, to, s.now())
	if end.Before(start) {
		v := newValidationError()
		v.Add("to", "must not be before from")
		return nil, v
	}

	counts, err := s.workOrderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, storeError("count work orders", "work order", "", err)
	}
	paid, err := s.invoiceRepo.ListByStatuses(ctx, []domain.InvoiceStatus{domain.InvoiceStatusPaid}, &start, &end)
	if err != nil {
		return nil, storeError("list paid invoices", "invoice", "", err)
	}
	open, err := s.invoiceRepo.ListByStatuses(ctx, []domain.InvoiceStatus{domain.InvoiceStatusDraft, domain.InvoiceStatusSent}, nil, nil)
	if err != nil {
		return nil, storeError("list open invoices", "invoice", "", err)
	}
	lowStock, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, storeError("list low stock", "inventory item", "", err)
	}
	customers, err := s.customerRepo.Count(ctx, domain.CustomerStatusActive)
	if err != nil {
		return nil, storeError("count customers", "customer", "", err)
	}

	dashboard := domain.BuildDashboard(domain.DashboardSnapshot{
		StatusCounts:  counts,
		PaidInvoices:  paid,
		OpenInvoices:  open,
		Inventory:     lowStock,
		CustomerCount: customers,
	})
	dto := mapper.ToDashboardDTO(dashboard, start, end)
	return &dto, nil
}

// StockAlerts returns items that are out of stock or at their minimum
func (s *DashboardService) StockAlerts(ctx context.Context) ([]domain.StockAlert, error) {
	items, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, storeError("list low stock", "inventory item", "", err)
	}
	return domain.BuildDashboard(domain.DashboardSnapshot{Inventory: items}).StockAlerts, nil
}
