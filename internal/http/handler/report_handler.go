package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tigerapp/oficina-api/internal/service"
	"go.uber.org/zap"
)

// ReportPathHeader carries the storage path of an archived report
const ReportPathHeader = "X-Report-Path"

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// InvoiceReport godoc
// @Summary Export invoices as Excel
// @Description Workbook with one row per invoice issued in the range, a totals row and a summary sheet. With archive=true the file is also stored and its path returned in X-Report-Path.
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "Issued from (YYYY-MM-DD)"
// @Param to query string false "Issued up to, inclusive (YYYY-MM-DD)"
// @Param archive query bool false "Also store the workbook"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/invoices.xlsx [get]
func (h *ReportHandler) InvoiceReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	archive, _ := strconv.ParseBool(r.URL.Query().Get("archive"))

	report, err := h.reportService.InvoiceReport(r.Context(), from, to, archive)
	if err != nil {
		respondServiceError(w, h.logger, "build invoice report", err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	if report.StoragePath != "" {
		w.Header().Set(ReportPathHeader, report.StoragePath)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Data); err != nil {
		h.logger.Warn("failed to write report", zap.Error(err))
	}
}
