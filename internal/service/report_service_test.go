package service_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestReportService_InvoiceReport(t *testing.T) {
	s := newShop(t)
	seedFinancials(t, s)

	report, err := s.reports.InvoiceReport(s.ctx(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, service.ReportContentType, report.ContentType)
	assert.Contains(t, report.Filename, "faturas_")
	assert.Empty(t, report.StoragePath)

	f, err := excelize.OpenReader(bytes.NewReader(report.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Faturas")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Número", rows[0][0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "2", rows[3][1])

	total, err := f.GetCellValue("Faturas", "K4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "500", total)

	summary, err := f.GetRows("Resumo")
	require.NoError(t, err)
	found := false
	for _, row := range summary {
		if len(row) == 2 && row[0] == "pix" {
			found = true
		}
	}
	assert.True(t, found, "payment method row missing from summary")
}

func TestReportService_InvoiceReport_Archive(t *testing.T) {
	s := newShop(t)
	seedFinancials(t, s)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	reports := service.NewReportService(repository.NewInvoiceRepository(s.db), store, zap.NewNop())

	report, err := reports.InvoiceReport(s.ctx(), nil, nil, true)
	require.NoError(t, err)
	require.NotEmpty(t, report.StoragePath)

	rc, err := store.Download(s.ctx(), report.StoragePath)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, report.Data, data)
}

func TestReportService_InvoiceReport_Errors(t *testing.T) {
	s := newShop(t)
	reports := service.NewReportService(repository.NewInvoiceRepository(s.db), nil, zap.NewNop())

	_, err := reports.InvoiceReport(s.ctx(), nil, nil, true)
	assert.True(t, errors.Is(err, service.ErrInvalidState))

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err = reports.InvoiceReport(s.ctx(), &from, &to, false)
	assert.True(t, errors.Is(err, service.ErrValidation))

	empty, err := reports.InvoiceReport(s.ctx(), nil, nil, false)
	require.NoError(t, err)
	assert.NotEmpty(t, empty.Data)
}
