package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/tigerapp/oficina-api/internal/auth"
	"github.com/tigerapp/oficina-api/internal/config"
	"github.com/tigerapp/oficina-api/internal/database"
	"github.com/tigerapp/oficina-api/internal/domain"
	"github.com/tigerapp/oficina-api/internal/http/handler"
	"github.com/tigerapp/oficina-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/tigerapp/oficina-api/docs" // registers swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth      *handler.AuthHandler
	Customer  *handler.CustomerHandler
	Vehicle   *handler.VehicleHandler
	Catalog   *handler.CatalogHandler
	Inventory *handler.InventoryHandler
	WorkOrder *handler.WorkOrderHandler
	Invoice   *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
	Report    *handler.ReportHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	redis          *redis.Client
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

// NewRouter wires the HTTP surface; redisClient may be nil when sessions live
// in the database
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func writeHealth(w http.ResponseWriter, healthy bool, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if healthy {
		body["status"] = "healthy"
		w.WriteHeader(http.StatusOK)
	} else {
		body["status"] = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.Stats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeHealth(w, false, map[string]interface{}{"service": "database", "error": err.Error()})
			return
		}
		writeHealth(w, true, map[string]interface{}{
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Readiness checks every dependency
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		if rt.redis != nil {
			if err := rt.redis.Ping(r.Context()).Err(); err != nil {
				rt.logger.Error("Redis health check failed", zap.Error(err))
				checks["redis"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
				allHealthy = false
			} else {
				checks["redis"] = map[string]interface{}{"status": "healthy"}
			}
		}

		writeHealth(w, allHealthy, map[string]interface{}{"checks": checks})
	})

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers
	staff := rt.authMiddleware.RequireRole(domain.RoleManager, domain.RoleCashier)
	managers := rt.authMiddleware.RequireRole(domain.RoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.With(rt.authMiddleware.Optional).Post("/signup", h.Auth.SignUp)
			r.Post("/signin", h.Auth.SignIn)
			r.Post("/password-reset", h.Auth.RequestPasswordReset)
			r.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.LimitByUser)

			r.Post("/auth/signout", h.Auth.SignOut)
			r.Get("/auth/me", h.Auth.Me)
			r.Get("/users/mechanics", h.Auth.ListMechanics)

			r.Route("/customers", func(r chi.Router) {
				r.Use(staff)
				r.Get("/", h.Customer.List)
				r.Post("/", h.Customer.Create)
				r.Get("/{id}", h.Customer.GetByID)
				r.Put("/{id}", h.Customer.Update)
				r.Delete("/{id}", h.Customer.Delete)
				r.Get("/{id}/vehicles", h.Customer.Vehicles)
				r.Get("/{id}/work-orders", h.Customer.WorkOrders)
				r.Get("/{id}/financial-summary", h.Customer.FinancialSummary)
			})

			r.Route("/vehicles", func(r chi.Router) {
				r.Use(staff)
				r.Get("/", h.Vehicle.List)
				r.Post("/", h.Vehicle.Create)
				r.Get("/plate/{plate}", h.Vehicle.GetByPlate)
				r.Get("/{id}", h.Vehicle.GetByID)
				r.Put("/{id}", h.Vehicle.Update)
				r.Delete("/{id}", h.Vehicle.Delete)
			})

			r.Route("/catalog/services", func(r chi.Router) {
				r.Get("/", h.Catalog.List)
				r.Get("/{id}", h.Catalog.GetByID)
				r.With(managers).Post("/", h.Catalog.Create)
				r.With(managers).Put("/{id}", h.Catalog.Update)
				r.With(managers).Delete("/{id}", h.Catalog.Delete)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Use(staff)
				r.Get("/", h.Inventory.List)
				r.Post("/", h.Inventory.Create)
				r.Get("/low-stock", h.Inventory.LowStock)
				r.Get("/{id}", h.Inventory.GetByID)
				r.Put("/{id}", h.Inventory.Update)
				r.Post("/{id}/adjust", h.Inventory.AdjustStock)
				r.Delete("/{id}", h.Inventory.Delete)
			})

			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", h.WorkOrder.List)
				r.Post("/", h.WorkOrder.Create)
				r.Get("/{id}", h.WorkOrder.GetByID)
				r.Patch("/{id}", h.WorkOrder.Update)
				r.With(staff).Delete("/{id}", h.WorkOrder.Delete)
				r.Get("/{id}/transition-check", h.WorkOrder.CheckTransition)
				r.Post("/{id}/services", h.WorkOrder.AddService)
				r.Delete("/{id}/services/{lineId}", h.WorkOrder.RemoveService)
				r.Post("/{id}/parts", h.WorkOrder.AddPart)
				r.Delete("/{id}/parts/{lineId}", h.WorkOrder.RemovePart)
				r.Post("/{id}/recalculate", h.WorkOrder.RecalculateTotal)
				r.Get("/{id}/history", h.WorkOrder.History)
				r.Get("/{id}/detours", h.WorkOrder.Detours)
				r.Get("/{id}/invoices", h.WorkOrder.Invoices)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(staff)
				r.Get("/", h.Invoice.List)
				r.Post("/", h.Invoice.Create)
				r.Get("/{id}", h.Invoice.GetByID)
				r.Patch("/{id}", h.Invoice.Update)
				r.Post("/{id}/pay", h.Invoice.MarkPaid)
				r.Post("/{id}/send", h.Invoice.Send)
				r.Post("/{id}/cancel", h.Invoice.Cancel)
				r.With(managers).Delete("/{id}", h.Invoice.Delete)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/metrics", h.Dashboard.GetMetrics)
				r.Get("/stock-alerts", h.Dashboard.StockAlerts)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(managers)
				r.Get("/invoices.xlsx", h.Report.InvoiceReport)
			})
		})
	})

	return r
}
