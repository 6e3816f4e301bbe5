package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportContentType is the MIME type of generated workbooks
const ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	invoiceSheet = "Faturas"
	summarySheet = "Resumo"
)

var invoiceReportHeaders = []string{
	"Número", "Tipo", "Status", "Emissão", "Vencimento", "Cliente", "OS",
	"Subtotal", "Impostos", "Desconto", "Total", "Forma de Pagamento", "Pago em",
}

// Report is a generated workbook. StoragePath is set when it was archived.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
	StoragePath string
}

// ReportService exports financial reports as Excel workbooks
type ReportService struct {
	invoiceRepo *repository.InvoiceRepository
	storage     storage.Storage
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService creates the service; store may be nil when archiving is disabled
func NewReportService(invoiceRepo *repository.InvoiceRepository, store storage.Storage, logger *zap.Logger) *ReportService {
	return &ReportService{invoiceRepo: invoiceRepo, storage: store, logger: logger, now: time.Now}
}

// InvoiceReport lists invoices issued in [from, to] with a totals row and a
// summary sheet per status and payment method
func (s *ReportService) InvoiceReport(ctx context.Context, from, to *time.Time, archive bool) (*Report, error) {
	start, end := DashboardRange(from, to, s.now())
	if end.Before(start) {
		v := newValidationError()
		v.Add("to", "must not be before from")
		return nil, v
	}
	if archive && s.storage == nil {
		return nil, invalidState("report archiving is not configured")
	}

	invoices, err := s.invoiceRepo.ListAll(ctx, repository.InvoiceFilter{From: &start, To: &end})
	if err != nil {
		return nil, storeError("list invoices", "invoice", "", err)
	}

	data, err := buildInvoiceWorkbook(invoices)
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice report: %w", err)
	}

	report := &Report{
		Filename:    fmt.Sprintf("faturas_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102")),
		ContentType: ReportContentType,
		Data:        data,
	}

	if archive {
		path, size, err := s.storage.Upload(ctx, report.Filename, ReportContentType, bytes.NewReader(data))
		if err != nil {
			return nil, &PersistenceError{Op: "archive report", Err: err}
		}
		report.StoragePath = path
		s.logger.Info("invoice report archived", zap.String("path", path), zap.Int64("size", size))
	}
	return report, nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func buildInvoiceWorkbook(invoices []domain.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, err
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, err
	}

	for i, h := range invoiceReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(invoiceSheet, cell, h)
		f.SetCellStyle(invoiceSheet, cell, cell, bold)
	}

	subtotal, tax, discount, total := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	byStatus := make(map[domain.InvoiceStatus]decimal.Decimal)
	byMethod := make(map[string]decimal.Decimal)

	for i, inv := range invoices {
		row := i + 2
		customer, order := "", ""
		if inv.Customer != nil {
			customer = inv.Customer.Name
		}
		if inv.WorkOrder != nil {
			order = inv.WorkOrder.OrderNumber
		}
		method := ""
		if inv.PaymentMethod != nil {
			method = string(*inv.PaymentMethod)
		}

		values := []interface{}{
			inv.InvoiceNumber,
			string(inv.Type),
			string(inv.Status),
			inv.IssueDate.Format("2006-01-02"),
			dateOrEmpty(inv.DueDate),
			customer,
			order,
			money(inv.Subtotal),
			money(inv.TaxAmount),
			money(inv.DiscountAmount),
			money(inv.TotalAmount),
			method,
			dateOrEmpty(inv.PaidAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(invoiceSheet, cell, v)
		}

		subtotal = subtotal.Add(inv.Subtotal)
		tax = tax.Add(inv.TaxAmount)
		discount = discount.Add(inv.DiscountAmount)
		total = total.Add(inv.TotalAmount)
		byStatus[inv.Status] = byStatus[inv.Status].Add(inv.TotalAmount)
		if inv.Status == domain.InvoiceStatusPaid {
			if method == "" {
				method = domain.UnspecifiedPaymentMethod
			}
			byMethod[method] = byMethod[method].Add(inv.TotalAmount)
		}
	}

	totalsRow := len(invoices) + 2
	f.SetCellValue(invoiceSheet, fmt.Sprintf("A%d", totalsRow), "Total")
	f.SetCellValue(invoiceSheet, fmt.Sprintf("B%d", totalsRow), len(invoices))
	f.SetCellValue(invoiceSheet, fmt.Sprintf("H%d", totalsRow), money(subtotal))
	f.SetCellValue(invoiceSheet, fmt.Sprintf("I%d", totalsRow), money(tax))
	f.SetCellValue(invoiceSheet, fmt.Sprintf("J%d", totalsRow), money(discount))
	f.SetCellValue(invoiceSheet, fmt.Sprintf("K%d", totalsRow), money(total))
	f.SetCellStyle(invoiceSheet, fmt.Sprintf("A%d", totalsRow), fmt.Sprintf("M%d", totalsRow), bold)
	f.SetCellStyle(invoiceSheet, "H2", fmt.Sprintf("K%d", totalsRow), moneyStyle)
	f.SetColWidth(invoiceSheet, "A", "A", 16)
	f.SetColWidth(invoiceSheet, "F", "F", 30)
	f.SetColWidth(invoiceSheet, "L", "L", 20)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	f.SetCellValue(summarySheet, "A1", "Status")
	f.SetCellValue(summarySheet, "B1", "Total")
	f.SetCellStyle(summarySheet, "A1", "B1", bold)
	row := 2
	for _, st := range []domain.InvoiceStatus{domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusPaid, domain.InvoiceStatusCancelled} {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(st))
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), money(byStatus[st]))
		row++
	}

	row++
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Forma de Pagamento")
	f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Recebido")
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), bold)
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		row++
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), m)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), money(byMethod[m]))
	}
	f.SetCellStyle(summarySheet, "B2", fmt.Sprintf("B%d", row), moneyStyle)
	f.SetColWidth(summarySheet, "A", "A", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
