package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/adapter/http/handler"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
	"github.com/iho/splitledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	GroupHandler      *handler.GroupHandler
	ExpenseHandler    *handler.ExpenseHandler
	BalanceHandler    *handler.BalanceHandler
	SettlementHandler *handler.SettlementHandler
	ShareHandler      *handler.ShareHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	Logger            zerolog.Logger
	RateLimit         float64
	RateBurst         int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Groups
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", cfg.GroupHandler.Create)
			r.Get("/", cfg.GroupHandler.List)
			r.Get("/{id}", cfg.GroupHandler.Get)
			r.Delete("/{id}", cfg.GroupHandler.Delete)

			r.Post("/{id}/members", cfg.GroupHandler.AddMember)
			r.Delete("/{id}/members/{memberID}", cfg.GroupHandler.RemoveMember)

			r.Post("/{id}/expenses", cfg.ExpenseHandler.Create)
			r.Get("/{id}/expenses", cfg.ExpenseHandler.ListByGroup)

			r.Get("/{id}/balances", cfg.BalanceHandler.GetByGroup)

			r.Post("/{id}/settlements", cfg.SettlementHandler.Record)
			r.Get("/{id}/settlements", cfg.SettlementHandler.ListByGroup)
			r.Post("/{id}/settlements/suggest", cfg.SettlementHandler.Suggest)
		})

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/{id}", cfg.ExpenseHandler.Get)
			r.Put("/{id}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		// Settlements
		r.Route("/settlements", func(r chi.Router) {
			r.Get("/{id}", cfg.SettlementHandler.Get)
			r.Post("/{id}/confirm", cfg.SettlementHandler.Confirm)
			r.Post("/{id}/pay", cfg.SettlementHandler.Pay)
			r.Post("/{id}/discard", cfg.SettlementHandler.Discard)
			r.Post("/{id}/void", cfg.SettlementHandler.Void)
		})

		// Shares
		r.Route("/shares", func(r chi.Router) {
			r.Post("/{id}/pay", cfg.ShareHandler.Pay)
			r.Post("/{id}/unpay", cfg.ShareHandler.Unpay)
		})
	})

	return r
}
