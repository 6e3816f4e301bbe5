package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func pix() *domain.PaymentMethod {
	m := domain.PaymentMethodPix
	return &m
}

func TestInvoiceService_CreateReceipt(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "350.00")
	s.moveTo(t, wo.ID, domain.StatusInProgress, domain.StatusCompleted)

	receipt, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:    wo.ID,
		CustomerID:     customer.ID,
		Type:           domain.InvoiceTypeReceipt,
		Subtotal:       dec("350.00"),
		DiscountAmount: dec("50.00"),
		PaymentMethod:  pix(),
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("RC-%d-001", time.Now().UTC().Year()), receipt.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusPaid, receipt.Status)
	assert.Equal(t, "300", receipt.TotalAmount.String())
	assert.NotNil(t, receipt.PaidAt)
	assert.Nil(t, receipt.DueDate)
	require.NotNil(t, receipt.PaymentMethod)
	assert.Equal(t, domain.PaymentMethodPix, *receipt.PaymentMethod)
	assert.Equal(t, wo.OrderNumber, receipt.OrderNumber)
	assert.Equal(t, "Gerente Teste", receipt.CreatedByName)

	after, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", after.TotalSpent.String())
}

func TestInvoiceService_CreateReceipt_FromWorkOrderTotal(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "350.00")
	s.moveTo(t, wo.ID, domain.StatusInProgress, domain.StatusCompleted)

	receipt, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        customer.ID,
		Type:              domain.InvoiceTypeReceipt,
		UseWorkOrderTotal: true,
		DiscountAmount:    dec("50.00"),
		PaymentMethod:     pix(),
	})
	require.NoError(t, err)
	assert.Equal(t, "350", receipt.Subtotal.String())
	assert.Equal(t, "300", receipt.TotalAmount.String())
}

func TestInvoiceService_CreateReceipt_RequiresCompletedOrder(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "350.00")

	_, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:   wo.ID,
		CustomerID:    customer.ID,
		Type:          domain.InvoiceTypeReceipt,
		Subtotal:      dec("350.00"),
		PaymentMethod: pix(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidState))
}

func TestInvoiceService_CreateReceipt_RequiresPaymentMethod(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "350.00")
	s.moveTo(t, wo.ID, domain.StatusInProgress, domain.StatusCompleted)

	_, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeReceipt,
		Subtotal:    dec("350.00"),
	})
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "paymentMethod")
}

func TestInvoiceService_CreateInvoice_StartsAsDraft(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")
	due := time.Now().AddDate(0, 0, 15)

	invoice, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("200.00"),
		TaxAmount:   dec("20.00"),
		DueDate:     &due,
	})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("NF-%d-001", time.Now().UTC().Year()), invoice.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, "220", invoice.TotalAmount.String())
	assert.NotNil(t, invoice.DueDate)
	assert.Nil(t, invoice.PaidAt)

	after, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.True(t, after.TotalSpent.IsZero())
}

func TestInvoiceService_Create_Validation(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")

	tests := []struct {
		name  string
		req   domain.CreateInvoiceRequest
		field string
	}{
		{
			name:  "missing subtotal",
			req:   domain.CreateInvoiceRequest{WorkOrderID: wo.ID, CustomerID: customer.ID, Type: domain.InvoiceTypeInvoice},
			field: "subtotal",
		},
		{
			name:  "negative subtotal",
			req:   domain.CreateInvoiceRequest{WorkOrderID: wo.ID, CustomerID: customer.ID, Type: domain.InvoiceTypeInvoice, Subtotal: dec("-10")},
			field: "subtotal",
		},
		{
			name:  "negative tax",
			req:   domain.CreateInvoiceRequest{WorkOrderID: wo.ID, CustomerID: customer.ID, Type: domain.InvoiceTypeInvoice, Subtotal: dec("10"), TaxAmount: dec("-1")},
			field: "taxAmount",
		},
		{
			name:  "unknown type",
			req:   domain.CreateInvoiceRequest{WorkOrderID: wo.ID, CustomerID: customer.ID, Type: "boleto", Subtotal: dec("10")},
			field: "invoiceType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.invoices.Create(s.ctx(), &tt.req)
			var ve *service.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestInvoiceService_Create_NegativeSubtotalAllowed(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")

	credit, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:           wo.ID,
		CustomerID:            customer.ID,
		Type:                  domain.InvoiceTypeInvoice,
		Subtotal:              dec("-40.00"),
		AllowNegativeSubtotal: true,
	})
	require.NoError(t, err)
	assert.True(t, credit.NegativeTotal)
	assert.Equal(t, "-40", credit.TotalAmount.String())
}

func TestInvoiceService_Create_CustomerMismatch(t *testing.T) {
	s := newShop(t)
	_, wo := s.openOrder(t, "200.00")
	stranger := testutil.CreateTestCustomer(t, s.db, "Pedro Alves")

	_, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  stranger.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("200.00"),
	})
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")

	invoice, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        customer.ID,
		Type:              domain.InvoiceTypeInvoice,
		UseWorkOrderTotal: true,
	})
	require.NoError(t, err)

	sent, err := s.invoices.Send(s.ctx(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)

	paid, err := s.invoices.MarkPaid(s.ctx(), invoice.ID, &domain.MarkPaidRequest{PaymentMethod: domain.PaymentMethodCard})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	after, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "200", after.TotalSpent.String())

	_, err = s.invoices.Cancel(s.ctx(), invoice.ID)
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	_, err = s.invoices.MarkPaid(s.ctx(), invoice.ID, &domain.MarkPaidRequest{PaymentMethod: domain.PaymentMethodCash})
	assert.True(t, errors.Is(err, service.ErrInvalidState))
}

func TestInvoiceService_MarkPaid_CancelledIsUnchanged(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")

	invoice, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("200.00"),
	})
	require.NoError(t, err)

	_, err = s.invoices.Cancel(s.ctx(), invoice.ID)
	require.NoError(t, err)

	_, err = s.invoices.MarkPaid(s.ctx(), invoice.ID, &domain.MarkPaidRequest{PaymentMethod: domain.PaymentMethodPix})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	unchanged, err := s.invoices.GetByID(s.ctx(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, unchanged.Status)
	assert.Nil(t, unchanged.PaidAt)
	assert.Nil(t, unchanged.PaymentMethod)

	after, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.True(t, after.TotalSpent.IsZero())
}

func TestInvoiceService_MarkPaid_UnknownMethod(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")
	invoice, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("200.00"),
	})
	require.NoError(t, err)

	_, err = s.invoices.MarkPaid(s.ctx(), invoice.ID, &domain.MarkPaidRequest{PaymentMethod: "cheque"})
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestInvoiceService_Update(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")
	invoice, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("200.00"),
	})
	require.NoError(t, err)

	notes := "Pagamento em duas vezes"
	updated, err := s.invoices.Update(s.ctx(), invoice.ID, &domain.UpdateInvoiceRequest{
		DiscountAmount: dec("25.50"),
		Notes:          &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "174.5", updated.TotalAmount.String())
	assert.Equal(t, notes, updated.Notes)

	_, err = s.invoices.MarkPaid(s.ctx(), invoice.ID, &domain.MarkPaidRequest{PaymentMethod: domain.PaymentMethodCash})
	require.NoError(t, err)

	_, err = s.invoices.Update(s.ctx(), invoice.ID, &domain.UpdateInvoiceRequest{Subtotal: dec("10")})
	assert.True(t, errors.Is(err, service.ErrInvalidState))
}

func TestInvoiceService_ListAndDelete(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "200.00")
	for i := 0; i < 2; i++ {
		_, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
			WorkOrderID: wo.ID,
			CustomerID:  customer.ID,
			Type:        domain.InvoiceTypeInvoice,
			Subtotal:    dec("100.00"),
		})
		require.NoError(t, err)
	}

	byOrder, err := s.invoices.ListByWorkOrder(s.ctx(), wo.ID)
	require.NoError(t, err)
	require.Len(t, byOrder, 2)

	page, err := s.invoices.List(s.ctx(), repository.InvoiceFilter{Status: domain.InvoiceStatusDraft}, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = s.invoices.List(s.ctx(), repository.InvoiceFilter{Status: "estornada"}, repository.NewPage(1, 10))
	assert.True(t, errors.Is(err, service.ErrValidation))

	require.NoError(t, s.invoices.Delete(s.ctx(), byOrder[0].ID))
	assert.True(t, errors.Is(s.invoices.Delete(s.ctx(), byOrder[0].ID), service.ErrNotFound))
}

func TestInvoiceService_NegativeTotalIsLogged(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "100.00")

	core, logs := observer.New(zap.WarnLevel)
	invoices := service.NewInvoiceService(s.db,
		repository.NewInvoiceRepository(s.db),
		repository.NewWorkOrderRepository(s.db),
		repository.NewCustomerRepository(s.db),
		service.NewNumberSequenceService(repository.NewNumberSequenceRepository(s.db), zap.NewNop()),
		zap.New(core))

	invoice, err := invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:    wo.ID,
		CustomerID:     customer.ID,
		Type:           domain.InvoiceTypeInvoice,
		Subtotal:       dec("100.00"),
		DiscountAmount: dec("150.00"),
	})
	require.NoError(t, err)
	assert.True(t, invoice.NegativeTotal)

	warnings := logs.FilterMessage("invoice total is negative")
	require.Equal(t, 1, warnings.Len())
	fields := warnings.All()[0].ContextMap()
	assert.Equal(t, invoice.InvoiceNumber, fields["invoice_number"])
	assert.Equal(t, "-50.00", fields["total"])

	_, err = invoices.Update(s.ctx(), invoice.ID, &domain.UpdateInvoiceRequest{DiscountAmount: dec("20.00")})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("invoice total is negative").Len())

	_, err = invoices.Update(s.ctx(), invoice.ID, &domain.UpdateInvoiceRequest{DiscountAmount: dec("300.00")})
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("invoice total is negative").Len())
}

func TestInvoiceService_DeletePaidRestoresCustomerSpending(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "350.00")
	s.moveTo(t, wo.ID, domain.StatusInProgress, domain.StatusCompleted)

	receipt, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID:       wo.ID,
		CustomerID:        customer.ID,
		Type:              domain.InvoiceTypeReceipt,
		UseWorkOrderTotal: true,
		PaymentMethod:     pix(),
	})
	require.NoError(t, err)

	before, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "350", before.TotalSpent.String())

	require.NoError(t, s.invoices.Delete(s.ctx(), receipt.ID))

	after, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.True(t, after.TotalSpent.IsZero(), "total spent %s", after.TotalSpent)

	summary, err := s.customers.FinancialSummary(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalSpent.IsZero())
	assert.True(t, summary.ThisYear.IsZero())
}

func TestInvoiceService_DeleteDraftKeepsCustomerSpending(t *testing.T) {
	s := newShop(t)
	customer, wo := s.openOrder(t, "120.00")

	draft, err := s.invoices.Create(s.ctx(), &domain.CreateInvoiceRequest{
		WorkOrderID: wo.ID,
		CustomerID:  customer.ID,
		Type:        domain.InvoiceTypeInvoice,
		Subtotal:    dec("120.00"),
	})
	require.NoError(t, err)
	require.NoError(t, s.invoices.Delete(s.ctx(), draft.ID))

	after, err := s.customers.GetByID(s.ctx(), customer.ID)
	require.NoError(t, err)
	assert.True(t, after.TotalSpent.IsZero())
}
