package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/splitledger/internal/adapter/http"
	"github.com/iho/splitledger/internal/adapter/http/handler"
	"github.com/iho/splitledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/splitledger/internal/adapter/repository/redis"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
	infraredis "github.com/iho/splitledger/internal/infrastructure/redis"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/tests/testutil"
)

// testEnv wires the full HTTP stack against a real database and Redis.
type testEnv struct {
	router http.Handler
	db     *testutil.TestDB
	redis  *goredis.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })
	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	shareRepo := postgres.NewShareRepository(pool)
	settlementRepo := postgres.NewSettlementRepository(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()

	cache := redisrepo.NewCache(redisClient)
	locker := redisrepo.NewGroupLocker(redisClient)

	m := metrics.New()

	balanceUC := usecase.NewBalanceUseCase(groupRepo, expenseRepo, settlementRepo, cache, m)
	groupUC := usecase.NewGroupUseCase(groupRepo, memberRepo, balanceUC, idGen, m)
	expenseUC := usecase.NewExpenseUseCase(txManager, groupRepo, expenseRepo, balanceUC, idGen, m)
	settlementUC := usecase.NewSettlementUseCase(txManager, groupRepo, expenseRepo, shareRepo, settlementRepo, balanceUC, locker, idGen, m)
	paymentUC := usecase.NewPaymentUseCase(txManager, expenseRepo, shareRepo, settlementRepo, balanceUC, retrier, m)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		GroupHandler:      handler.NewGroupHandler(groupUC),
		ExpenseHandler:    handler.NewExpenseHandler(expenseUC),
		BalanceHandler:    handler.NewBalanceHandler(balanceUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC, paymentUC),
		ShareHandler:      handler.NewShareHandler(paymentUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		Logger:            zerolog.Nop(),
	})

	return &testEnv{router: router, db: testDB, redis: redisClient}
}

// do executes an HTTP request against the in-process router and decodes
// the JSON response into out when out is non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	e.router.ServeHTTP(rr, req)

	if out != nil && rr.Code < http.StatusBadRequest {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response %s: %v", rr.Body.String(), err)
		}
	}

	return rr.Code
}
