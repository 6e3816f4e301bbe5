package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tigerapp/oficina-api/docs"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/config"
	"github.com/tigerapp/oficina-api/internal/database"
	"github.com/tigerapp/oficina-api/internal/http/handler"
	"github.com/tigerapp/oficina-api/internal/http/middleware"
	"github.com/tigerapp/oficina-api/internal/http/router"
	"github.com/tigerapp/oficina-api/internal/jobs"
	"github.com/tigerapp/oficina-api/internal/logger"
	"github.com/tigerapp/oficina-api/internal/repository"
	"github.com/tigerapp/oficina-api/internal/service"
	"github.com/tigerapp/oficina-api/internal/storage"
	"go.uber.org/zap"
)

// @title Oficina API
// @version 1.0
// @description Back office for an auto repair shop: customers, vehicles, work orders, invoices and inventory

// @contact.name Oficina Support
// @contact.email suporte@oficina.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token from /auth/signin, as "Bearer <token>"

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system integrations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Basic configuration first, for logging setup
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	if cfg.Database.AutoMigrate || cfg.Database.IsSQLite() {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("Database schema migrated")
	}

	reportStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	historyRepo := repository.NewWorkOrderHistoryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Sessions live in Redis when configured, otherwise in the database
	var (
		sessions    auth.SessionStore
		redisClient *redis.Client
	)
	if strings.EqualFold(cfg.Auth.SessionStore, "redis") {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		sessions = auth.NewRedisSessionStore(redisClient)
		log.Info("Session store: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessions = auth.NewDBSessionStore(sessionRepo)
		log.Info("Session store: database")
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTLDuration())
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	throttle := auth.NewSignInThrottle(cfg.Auth.SignInAttemptsPerMinute, cfg.Auth.SignInBurst)

	// Services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	authService := service.NewAuthService(db, userRepo, resetRepo, sessions, tokens, hasher, throttle, cfg.Auth.PasswordResetTTLDuration(), log)
	customerService := service.NewCustomerService(customerRepo, vehicleRepo, workOrderRepo, invoiceRepo, log)
	vehicleService := service.NewVehicleService(vehicleRepo, customerRepo, workOrderRepo, log)
	catalogService := service.NewCatalogService(catalogRepo, log)
	inventoryService := service.NewInventoryService(inventoryRepo, log)
	workOrderService := service.NewWorkOrderService(db, workOrderRepo, historyRepo, customerRepo, vehicleRepo, userRepo, catalogRepo, inventoryRepo, invoiceRepo, numberSequenceService, log)
	invoiceService := service.NewInvoiceService(db, invoiceRepo, workOrderRepo, customerRepo, numberSequenceService, log)
	dashboardService := service.NewDashboardService(workOrderRepo, invoiceRepo, inventoryRepo, customerRepo, log)
	reportService := service.NewReportService(invoiceRepo, reportStorage, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, sessions, cfg.ApiKey.Value, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, redisClient, authMiddleware, rateLimiter, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Customer:  handler.NewCustomerHandler(customerService, log),
		Vehicle:   handler.NewVehicleHandler(vehicleService, log),
		Catalog:   handler.NewCatalogHandler(catalogService, log),
		Inventory: handler.NewInventoryHandler(inventoryService, log),
		WorkOrder: handler.NewWorkOrderHandler(workOrderService, invoiceService, log),
		Invoice:   handler.NewInvoiceHandler(invoiceService, log),
		Dashboard: handler.NewDashboardHandler(dashboardService, log),
		Report:    handler.NewReportHandler(reportService, log),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log, cfg.Jobs.TimeoutDuration())
		if err := scheduler.Add(cfg.Jobs.StockAlert, jobs.NewStockAlertJob(dashboardService, log)); err != nil {
			return err
		}
		if err := scheduler.Add(cfg.Jobs.SessionCleanup, jobs.NewSessionCleanupJob(authService, log)); err != nil {
			return err
		}
		scheduler.Start()
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      http.TimeoutHandler(rt.Setup(), cfg.Server.RequestTimeoutDuration(), "request timed out"),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
