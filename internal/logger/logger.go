package logger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tigerapp/oficina-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the service logger. Production (or Format "json") writes
// JSON with stack traces on errors only; anything else gets a colored console.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	production := cfg.Format == "json" || appCfg.Environment == "production"

	zapCfg := zap.NewDevelopmentConfig()
	stacktraceAt := zapcore.WarnLevel
	if production {
		zapCfg = zap.NewProductionConfig()
		stacktraceAt = zapcore.ErrorLevel
	} else {
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.DisableStacktrace = true
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	log, err := zapCfg.Build(
		zap.AddStacktrace(stacktraceAt),
		zap.Fields(
			zap.String("app", appCfg.Name),
			zap.String("environment", appCfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// parseLevel falls back to info for empty or unknown levels
func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// WithRequest tags a logger with the HTTP request it serves
func WithRequest(log *zap.Logger, method, path, requestID string) *zap.Logger {
	return log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithUser adds the acting staff member
func WithUser(log *zap.Logger, userID, role string) *zap.Logger {
	return log.With(
		zap.String("user_id", userID),
		zap.String("role", role),
	)
}

func ForWorkOrder(log *zap.Logger, id uuid.UUID, orderNumber string) *zap.Logger {
	return log.With(
		zap.String("work_order_id", id.String()),
		zap.String("order_number", orderNumber),
	)
}

func ForInvoice(log *zap.Logger, id uuid.UUID, invoiceNumber string) *zap.Logger {
	return log.With(
		zap.String("invoice_id", id.String()),
		zap.String("invoice_number", invoiceNumber),
	)
}

// ForJob names the logger after a scheduled job
func ForJob(log *zap.Logger, name string) *zap.Logger {
	return log.Named("jobs").With(zap.String("job_name", name))
}

// Money logs an amount with two decimals, the way it is shown to the shop
func Money(key string, amount decimal.Decimal) zap.Field {
	return zap.String(key, amount.StringFixed(2))
}
