package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
)

type CustomerService struct {
	customerRepo  *repository.CustomerRepository
	vehicleRepo   *repository.VehicleRepository
	workOrderRepo *repository.WorkOrderRepository
	invoiceRepo   *repository.InvoiceRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	vehicleRepo *repository.VehicleRepository,
	workOrderRepo *repository.WorkOrderRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo:  customerRepo,
		vehicleRepo:   vehicleRepo,
		workOrderRepo: workOrderRepo,
		invoiceRepo:   invoiceRepo,
		logger:        logger,
		now:           time.Now,
	}
}

func applyCustomerRequest(c *domain.Customer, req *domain.CreateCustomerRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Phone = strings.TrimSpace(req.Phone)
	c.AltPhone = req.AltPhone
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.TaxID = req.TaxID
	c.IDNumber = req.IDNumber
	c.DriverLicense = req.DriverLicense
	c.Street = req.Address.Street
	c.Number = req.Address.Number
	c.Complement = req.Address.Complement
	c.Neighborhood = req.Address.Neighborhood
	c.City = req.Address.City
	c.State = strings.ToUpper(req.Address.State)
	c.PostalCode = req.Address.PostalCode
	c.BirthDate = req.BirthDate
	c.Notes = req.Notes
	if req.Status != "" {
		c.Status = req.Status
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	customer := &domain.Customer{Status: domain.CustomerStatusActive}
	applyCustomerRequest(customer, req)

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, storeError("create customer", "customer", customer.Name, err)
	}

	s.logger.Info("customer created", zap.String("customer_id", customer.ID.String()))
	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// GetByID returns the customer with its vehicles
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get customer", "customer", id, err)
	}
	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) List(ctx context.Context, filter repository.CustomerFilter, page repository.Page) (*domain.PaginatedResponse, error) {
	customers, total, err := s.customerRepo.List(ctx, filter, page)
	if err != nil {
		return nil, storeError("list customers", "customer", "", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Update replaces the editable fields; aggregated totals are left alone
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get customer", "customer", id, err)
	}

	applyCustomerRequest(customer, req)
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, storeError("update customer", "customer", id, err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// Delete removes the customer together with its vehicles. Customers with
// work orders are kept so invoices stay traceable.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customerID := id
	_, count, err := s.workOrderRepo.List(ctx, repository.WorkOrderFilter{CustomerID: &customerID}, repository.NewPage(1, 1))
	if err != nil {
		return storeError("count work orders", "work order", id, err)
	}
	if count > 0 {
		return invalidState("customer has %d work order(s) and cannot be deleted", count)
	}

	affected, err := s.customerRepo.Delete(ctx, id)
	if err != nil {
		return storeError("delete customer", "customer", id, err)
	}
	if affected == 0 {
		return notFound("customer", id)
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id.String()))
	return nil
}

// Vehicles lists the customer's vehicles
func (s *CustomerService) Vehicles(ctx context.Context, id uuid.UUID) ([]domain.VehicleDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get customer", "customer", id, err)
	}
	dtos := make([]domain.VehicleDTO, len(customer.Vehicles))
	for i := range customer.Vehicles {
		customer.Vehicles[i].Customer = customer
		dtos[i] = mapper.ToVehicleDTO(&customer.Vehicles[i])
	}
	return dtos, nil
}

// WorkOrders is the customer's service history, newest first
func (s *CustomerService) WorkOrders(ctx context.Context, id uuid.UUID, page repository.Page) (*domain.PaginatedResponse, error) {
	if ok, err := s.customerRepo.Exists(ctx, id); err != nil {
		return nil, storeError("get customer", "customer", id, err)
	} else if !ok {
		return nil, notFound("customer", id)
	}

	customerID := id
	orders, total, err := s.workOrderRepo.List(ctx, repository.WorkOrderFilter{CustomerID: &customerID}, page)
	if err != nil {
		return nil, storeError("list work orders", "work order", id, err)
	}
	dtos := make([]domain.WorkOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToWorkOrderDTO(&orders[i])
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// FinancialSummary derives spending figures from the customer's paid invoices
func (s *CustomerService) FinancialSummary(ctx context.Context, id uuid.UUID) (*domain.CustomerFinancialSummaryDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get customer", "customer", id, err)
	}

	invoices, err := s.invoiceRepo.ListPaidByCustomer(ctx, id)
	if err != nil {
		return nil, storeError("list paid invoices", "invoice", id, err)
	}

	entries := make([]domain.SpendingEntry, 0, len(invoices))
	for _, inv := range invoices {
		entry := domain.SpendingEntry{Date: inv.IssueDate, Amount: inv.TotalAmount}
		if inv.PaidAt != nil {
			entry.Date = *inv.PaidAt
		}
		if inv.PaymentMethod != nil {
			entry.PaymentMethod = string(*inv.PaymentMethod)
		}
		entries = append(entries, entry)
	}

	summary := domain.SummarizeCustomerFinancials(entries, customer.TotalSpent, customer.TotalServices, s.now().UTC())
	dto := mapper.ToCustomerFinancialSummaryDTO(customer, summary)
	return &dto, nil
}
