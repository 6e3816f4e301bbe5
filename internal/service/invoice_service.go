package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/logger"
	"github.com/tigerapp/oficina-api/internal/mapper"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService issues invoices and receipts against work orders
type InvoiceService struct {
	db         *gorm.DB
	invoices   *repository.InvoiceRepository
	workOrders *repository.WorkOrderRepository
	customers  *repository.CustomerRepository
	numbers    *NumberSequenceService
	logger     *zap.Logger
	now        func() time.Time
}

func NewInvoiceService(
	db *gorm.DB,
	invoices *repository.InvoiceRepository,
	workOrders *repository.WorkOrderRepository,
	customers *repository.CustomerRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		db:         db,
		invoices:   invoices,
		workOrders: workOrders,
		customers:  customers,
		numbers:    numbers,
		logger:     logger,
		now:        time.Now,
	}
}

func validateCreateInvoice(req *domain.CreateInvoiceRequest) error {
	v := newValidationError()
	if req.WorkOrderID == uuid.Nil {
		v.Add("workOrderId", "work order is required")
	}
	if req.CustomerID == uuid.Nil {
		v.Add("customerId", "customer is required")
	}
	if req.Type != domain.InvoiceTypeInvoice && req.Type != domain.InvoiceTypeReceipt {
		v.Add("invoiceType", "must be invoice or receipt")
	}
	if req.Subtotal == nil && !req.UseWorkOrderTotal {
		v.Add("subtotal", "subtotal is required")
	}
	if req.Subtotal != nil && req.Subtotal.IsNegative() && !req.AllowNegativeSubtotal {
		v.Add("subtotal", "must not be negative")
	}
	if req.TaxAmount != nil && req.TaxAmount.IsNegative() {
		v.Add("taxAmount", "must not be negative")
	}
	if req.DiscountAmount != nil && req.DiscountAmount.IsNegative() {
		v.Add("discountAmount", "must not be negative")
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.IsValid() {
		v.Add("paymentMethod", "unknown payment method")
	}
	if req.Type == domain.InvoiceTypeReceipt && req.PaymentMethod == nil {
		v.Add("paymentMethod", "receipts require a payment method")
	}
	return v.OrNil()
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Create issues an invoice or receipt. Numbering, the insert and the customer
// spending update for receipts share one transaction.
func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
	if err := validateCreateInvoice(req); err != nil {
		return nil, err
	}

	var (
		id     uuid.UUID
		number string
		total  decimal.Decimal
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workOrders := s.workOrders.WithTx(tx)
		invoices := s.invoices.WithTx(tx)
		customers := s.customers.WithTx(tx)

		wo, err := workOrders.GetHeader(ctx, req.WorkOrderID)
		if err != nil {
			return storeError("load work order", "work order", req.WorkOrderID, err)
		}
		if wo.CustomerID != req.CustomerID {
			v := newValidationError()
			v.Add("customerId", "work order belongs to another customer")
			return v
		}
		if req.Type == domain.InvoiceTypeReceipt && wo.Status != domain.StatusCompleted {
			return invalidState("receipts can only be issued for completed work orders; %s is %s", wo.OrderNumber, wo.Status)
		}

		subtotal := orZero(req.Subtotal)
		if req.Subtotal == nil {
			subtotal = wo.TotalAmount
		}
		tax := orZero(req.TaxAmount)
		discount := orZero(req.DiscountAmount)
		total = domain.InvoiceTotal(subtotal, tax, discount)
		if req.TotalAmount != nil {
			total = req.TotalAmount.Round(2)
		}

		number, err = s.numbers.WithTx(tx).GenerateInvoiceNumber(ctx, req.Type)
		if err != nil {
			return &PersistenceError{Op: "generate invoice number", Err: err}
		}

		now := s.now().UTC()
		invoice := &domain.Invoice{
			InvoiceNumber:  number,
			WorkOrderID:    wo.ID,
			CustomerID:     wo.CustomerID,
			Type:           req.Type,
			Status:         domain.InvoiceStatusDraft,
			IssueDate:      now,
			Subtotal:       subtotal.Round(2),
			TaxAmount:      tax.Round(2),
			DiscountAmount: discount.Round(2),
			TotalAmount:    total,
			PaymentMethod:  req.PaymentMethod,
			Notes:          req.Notes,
		}
		if req.IssueDate != nil {
			invoice.IssueDate = req.IssueDate.UTC()
		}
		if req.Type == domain.InvoiceTypeInvoice {
			invoice.DueDate = utcPtr(req.DueDate)
		}
		if req.Type == domain.InvoiceTypeReceipt {
			invoice.Status = domain.InvoiceStatusPaid
			invoice.PaidAt = &now
		}
		if actor := auth.Actor(ctx); actor != nil {
			invoice.CreatedByID = actor.ActorID()
		}

		if err := invoices.Create(ctx, invoice); err != nil {
			return storeError("create invoice", "invoice", number, err)
		}
		id = invoice.ID

		if invoice.Status == domain.InvoiceStatusPaid {
			if err := customers.AddServiceTotals(ctx, invoice.CustomerID, 0, invoice.TotalAmount); err != nil {
				return storeError("update customer totals", "customer", invoice.CustomerID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to create invoice",
			zap.String("work_order_id", req.WorkOrderID.String()),
			zap.String("type", string(req.Type)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("invoice created", zap.String("invoice_id", id.String()), zap.String("type", string(req.Type)))
	s.warnNegativeTotal(id, number, total)
	return s.GetByID(ctx, id)
}

// warnNegativeTotal flags an invoice whose discount exceeds subtotal plus tax
func (s *InvoiceService) warnNegativeTotal(id uuid.UUID, number string, total decimal.Decimal) {
	if !total.IsNegative() {
		return
	}
	logger.ForInvoice(s.logger, id, number).Warn("invoice total is negative", logger.Money("total", total))
}

// GetByID returns the invoice with customer, creator and work order details
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get invoice", "invoice", id, err)
	}
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// List returns invoices newest first
func (s *InvoiceService) List(ctx context.Context, filter repository.InvoiceFilter, page repository.Page) (*domain.PaginatedResponse, error) {
	v := newValidationError()
	if filter.Status != "" && !filter.Status.IsValid() {
		v.Add("status", "unknown invoice status")
	}
	if filter.Type != "" && filter.Type != domain.InvoiceTypeInvoice && filter.Type != domain.InvoiceTypeReceipt {
		v.Add("type", "must be invoice or receipt")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	invoices, total, err := s.invoices.List(ctx, filter, page)
	if err != nil {
		return nil, storeError("list invoices", "invoice", "", err)
	}
	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToInvoiceDTO(&invoices[i])
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// ListByWorkOrder returns the invoices of a work order, newest first
func (s *InvoiceService) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]domain.InvoiceDTO, error) {
	if _, err := s.workOrders.GetHeader(ctx, workOrderID); err != nil {
		return nil, storeError("get work order", "work order", workOrderID, err)
	}
	invoices, err := s.invoices.ListByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, storeError("list invoices", "invoice", workOrderID, err)
	}
	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToInvoiceDTO(&invoices[i])
	}
	return dtos, nil
}

// Update writes the supplied fields and re-derives the total. Paid and
// cancelled invoices are immutable.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateInvoiceRequest) (*domain.InvoiceDTO, error) {
	v := newValidationError()
	if req.TaxAmount != nil && req.TaxAmount.IsNegative() {
		v.Add("taxAmount", "must not be negative")
	}
	if req.DiscountAmount != nil && req.DiscountAmount.IsNegative() {
		v.Add("discountAmount", "must not be negative")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var (
		number string
		total  decimal.Decimal
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoices.WithTx(tx)
		invoice, err := invoices.GetHeader(ctx, id)
		if err != nil {
			return storeError("get invoice", "invoice", id, err)
		}
		number = invoice.InvoiceNumber
		if invoice.Status.IsTerminal() {
			return invalidState("invoice %s is %s and can no longer be changed", invoice.InvoiceNumber, invoice.Status)
		}

		fields := map[string]interface{}{"updated_at": s.now().UTC()}
		subtotal, tax, discount := invoice.Subtotal, invoice.TaxAmount, invoice.DiscountAmount
		if req.Subtotal != nil {
			subtotal = req.Subtotal.Round(2)
			fields["subtotal"] = subtotal
		}
		if req.TaxAmount != nil {
			tax = req.TaxAmount.Round(2)
			fields["tax_amount"] = tax
		}
		if req.DiscountAmount != nil {
			discount = req.DiscountAmount.Round(2)
			fields["discount_amount"] = discount
		}
		total = domain.InvoiceTotal(subtotal, tax, discount)
		fields["total_amount"] = total
		if req.DueDate != nil && invoice.Type == domain.InvoiceTypeInvoice {
			fields["due_date"] = req.DueDate.UTC()
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
		}

		if _, err := invoices.UpdateFields(ctx, id, fields); err != nil {
			return storeError("update invoice", "invoice", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.warnNegativeTotal(id, number, total)
	return s.GetByID(ctx, id)
}

// MarkPaid records payment. A cancelled invoice is left unchanged.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, req *domain.MarkPaidRequest) (*domain.InvoiceDTO, error) {
	if !req.PaymentMethod.IsValid() {
		v := newValidationError()
		v.Add("paymentMethod", "unknown payment method")
		return nil, v
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoices.WithTx(tx)
		invoice, err := invoices.GetHeader(ctx, id)
		if err != nil {
			return storeError("get invoice", "invoice", id, err)
		}
		if check := domain.CheckInvoiceTransition(invoice.Status, domain.InvoiceStatusPaid); !check.Allowed {
			return invalidState("%s", check.Reason)
		}

		paidAt := s.now().UTC()
		if req.PaidAt != nil {
			paidAt = req.PaidAt.UTC()
		}
		fields := map[string]interface{}{
			"status":         domain.InvoiceStatusPaid,
			"payment_method": req.PaymentMethod,
			"paid_at":        paidAt,
		}
		if _, err := invoices.UpdateFields(ctx, id, fields); err != nil {
			return storeError("mark invoice paid", "invoice", id, err)
		}
		if err := s.customers.WithTx(tx).AddServiceTotals(ctx, invoice.CustomerID, 0, invoice.TotalAmount); err != nil {
			return storeError("update customer totals", "customer", invoice.CustomerID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice paid", zap.String("invoice_id", id.String()), zap.String("method", string(req.PaymentMethod)))
	return s.GetByID(ctx, id)
}

// Send moves a draft invoice to sent
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	return s.transition(ctx, id, domain.InvoiceStatusSent)
}

// Cancel voids an invoice that has not been paid
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	return s.transition(ctx, id, domain.InvoiceStatusCancelled)
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, to domain.InvoiceStatus) (*domain.InvoiceDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoices.WithTx(tx)
		invoice, err := invoices.GetHeader(ctx, id)
		if err != nil {
			return storeError("get invoice", "invoice", id, err)
		}
		if check := domain.CheckInvoiceTransition(invoice.Status, to); !check.Allowed {
			return invalidState("%s", check.Reason)
		}
		if _, err := invoices.UpdateFields(ctx, id, map[string]interface{}{"status": to}); err != nil {
			return storeError("update invoice status", "invoice", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes an invoice. Deleting a paid one takes its total back out of
// the customer's spending in the same transaction.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoices.WithTx(tx)
		invoice, err := invoices.GetHeader(ctx, id)
		if err != nil {
			return storeError("get invoice", "invoice", id, err)
		}
		affected, err := invoices.Delete(ctx, id)
		if err != nil {
			return storeError("delete invoice", "invoice", id, err)
		}
		if affected == 0 {
			return notFound("invoice", id)
		}
		if invoice.Status == domain.InvoiceStatusPaid {
			if err := s.customers.WithTx(tx).AddServiceTotals(ctx, invoice.CustomerID, 0, invoice.TotalAmount.Neg()); err != nil {
				return storeError("update customer totals", "customer", invoice.CustomerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}
