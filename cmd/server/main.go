package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/splitledger/internal/adapter/http"
	"github.com/iho/splitledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/splitledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/splitledger/internal/adapter/repository/redis"
	"github.com/iho/splitledger/internal/infrastructure/config"
	"github.com/iho/splitledger/internal/infrastructure/logger"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
	"github.com/iho/splitledger/internal/infrastructure/postgres"
	"github.com/iho/splitledger/internal/infrastructure/redis"
	"github.com/iho/splitledger/internal/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	groupRepo := postgresRepo.NewGroupRepository(pool)
	memberRepo := postgresRepo.NewMemberRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	shareRepo := postgresRepo.NewShareRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	locker := redisRepo.NewGroupLocker(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	m := metrics.New()

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(groupRepo, expenseRepo, settlementRepo, cache, m)
	groupUC := usecase.NewGroupUseCase(groupRepo, memberRepo, balanceUC, idGen, m)
	expenseUC := usecase.NewExpenseUseCase(txManager, groupRepo, expenseRepo, balanceUC, idGen, m)
	settlementUC := usecase.NewSettlementUseCase(txManager, groupRepo, expenseRepo, shareRepo, settlementRepo, balanceUC, locker, idGen, m)
	paymentUC := usecase.NewPaymentUseCase(txManager, expenseRepo, shareRepo, settlementRepo, balanceUC, retrier, m)

	// Initialize handlers
	groupHandler := handler.NewGroupHandler(groupUC)
	expenseHandler := handler.NewExpenseHandler(expenseUC)
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	settlementHandler := handler.NewSettlementHandler(settlementUC, paymentUC)
	shareHandler := handler.NewShareHandler(paymentUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		GroupHandler:      groupHandler,
		ExpenseHandler:    expenseHandler,
		BalanceHandler:    balanceHandler,
		SettlementHandler: settlementHandler,
		ShareHandler:      shareHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		Logger:            appLogger,
		RateLimit:         cfg.RateLimit,
		RateBurst:         cfg.RateBurst,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
