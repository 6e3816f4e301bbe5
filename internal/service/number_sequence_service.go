package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sequence kinds. Invoices and receipts count independently.
const (
	SequenceWorkOrder = "work_order"
	SequenceInvoice   = "invoice"
	SequenceReceipt   = "receipt"
)

var sequencePrefixes = map[string]string{
	SequenceWorkOrder: "OS",
	SequenceInvoice:   "NF",
	SequenceReceipt:   "RC",
}

// NumberSequenceService formats document numbers as {PREFIX}-{YEAR}-{SEQ},
// e.g. OS-2025-001, NF-2025-014, RC-2025-003
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewNumberSequenceService(repo *repository.NumberSequenceRepository, logger *zap.Logger) *NumberSequenceService {
	return &NumberSequenceService{repo: repo, logger: logger, now: time.Now}
}

// WithTx returns a service whose numbers are assigned inside tx
func (s *NumberSequenceService) WithTx(tx *gorm.DB) *NumberSequenceService {
	return &NumberSequenceService{repo: s.repo.WithTx(tx), logger: s.logger, now: s.now}
}

// GenerateWorkOrderNumber returns the next OS-YYYY-NNN number
func (s *NumberSequenceService) GenerateWorkOrderNumber(ctx context.Context) (string, error) {
	return s.generate(ctx, SequenceWorkOrder)
}

// GenerateInvoiceNumber returns the next number for the invoice type
func (s *NumberSequenceService) GenerateInvoiceNumber(ctx context.Context, invoiceType domain.InvoiceType) (string, error) {
	switch invoiceType {
	case domain.InvoiceTypeInvoice:
		return s.generate(ctx, SequenceInvoice)
	case domain.InvoiceTypeReceipt:
		return s.generate(ctx, SequenceReceipt)
	default:
		return "", fmt.Errorf("%w: unknown invoice type %q", ErrValidation, invoiceType)
	}
}

func (s *NumberSequenceService) generate(ctx context.Context, kind string) (string, error) {
	year := s.now().UTC().Year()
	seq, err := s.repo.GetNextNumber(ctx, kind, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("kind", kind),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", kind, err)
	}

	number := fmt.Sprintf("%s-%d-%03d", sequencePrefixes[kind], year, seq)
	s.logger.Debug("generated number",
		zap.String("number", number),
		zap.String("kind", kind),
		zap.Int("sequence", seq))
	return number, nil
}
