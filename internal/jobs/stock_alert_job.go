package jobs

import (
	"context"

	"github.com/tigerapp/oficina-api/internal/domain"
	"go.uber.org/zap"
)

const StockAlertJobName = "stock_alert"

// StockAlertSource lists the items that need restocking
type StockAlertSource interface {
	StockAlerts(ctx context.Context) ([]domain.StockAlert, error)
}

// StockAlertJob logs out-of-stock and critical items so they show up in the
// shop's log alerts
type StockAlertJob struct {
	source StockAlertSource
	logger *zap.Logger
}

func NewStockAlertJob(source StockAlertSource, logger *zap.Logger) *StockAlertJob {
	return &StockAlertJob{source: source, logger: logger}
}

func (j *StockAlertJob) Name() string { return StockAlertJobName }

func (j *StockAlertJob) Run(ctx context.Context) error {
	alerts, err := j.source.StockAlerts(ctx)
	if err != nil {
		return err
	}

	var out, critical int
	for _, a := range alerts {
		switch a.Level {
		case domain.StockOut:
			out++
		case domain.StockCritical:
			critical++
		default:
			continue
		}
		j.logger.Warn("inventory item needs restocking",
			zap.String("item_id", a.ItemID),
			zap.String("code", a.Code),
			zap.String("name", a.Name),
			zap.Int("current_stock", a.CurrentStock),
			zap.Int("minimum_stock", a.MinimumStock),
			zap.String("level", string(a.Level)))
	}

	j.logger.Info("stock check finished", zap.Int("out", out), zap.Int("critical", critical))
	return nil
}
