package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/splitledger/internal/adapter/http/middleware"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimit = 1
		cfg.RateBurst = 1
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"trip","currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/groups/",
		"GET /api/v1/groups/{id}",
		"POST /api/v1/groups/{id}/expenses",
		"GET /api/v1/groups/{id}/balances",
		"POST /api/v1/groups/{id}/settlements/suggest",
		"PUT /api/v1/expenses/{id}",
		"POST /api/v1/settlements/{id}/pay",
		"POST /api/v1/settlements/{id}/void",
		"POST /api/v1/shares/{id}/unpay",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		GroupHandler:      handler.NewGroupHandler(stubGroupService{}),
		ExpenseHandler:    handler.NewExpenseHandler(stubExpenseService{}),
		BalanceHandler:    handler.NewBalanceHandler(stubBalanceService{}),
		SettlementHandler: handler.NewSettlementHandler(stubSettlementService{}, stubSettlementPayment{}),
		ShareHandler:      handler.NewShareHandler(stubSharePayment{}),
		HealthHandler:     &handler.HealthHandler{},
		Logger:            zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubGroupService struct{}

func (stubGroupService) CreateGroup(ctx context.Context, input usecase.CreateGroupInput) (*domain.Group, error) {
	return &domain.Group{ID: "grp"}, nil
}

func (stubGroupService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	return &domain.Group{ID: id}, nil
}

func (stubGroupService) ListGroups(ctx context.Context, input usecase.ListGroupsInput) ([]*domain.Group, error) {
	return []*domain.Group{}, nil
}

func (stubGroupService) DeleteGroup(ctx context.Context, id string) error {
	return nil
}

func (stubGroupService) AddMember(ctx context.Context, groupID, name string) (*domain.Member, error) {
	return &domain.Member{ID: "m", GroupID: groupID, Name: name}, nil
}

func (stubGroupService) RemoveMember(ctx context.Context, groupID, memberID string) error {
	return nil
}

type stubExpenseService struct{}

func (stubExpenseService) CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error) {
	return &domain.Expense{ID: "exp"}, nil
}

func (stubExpenseService) UpdateExpense(ctx context.Context, input usecase.UpdateExpenseInput) (*domain.Expense, error) {
	return &domain.Expense{ID: input.ExpenseID}, nil
}

func (stubExpenseService) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return &domain.Expense{ID: id}, nil
}

func (stubExpenseService) ListExpenses(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	return []*domain.Expense{}, nil
}

func (stubExpenseService) DeleteExpense(ctx context.Context, id string) error {
	return nil
}

type stubBalanceService struct{}

func (stubBalanceService) ComputeBalances(ctx context.Context, groupID string) ([]domain.Balance, error) {
	return []domain.Balance{}, nil
}

type stubSettlementService struct{}

func (stubSettlementService) SuggestSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	return []*domain.Settlement{}, nil
}

func (stubSettlementService) RecordSettlement(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error) {
	return &domain.Settlement{ID: "stl"}, nil
}

func (stubSettlementService) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return &domain.Settlement{ID: id}, nil
}

func (stubSettlementService) ListSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	return []*domain.Settlement{}, nil
}

func (stubSettlementService) ConfirmSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return &domain.Settlement{ID: id}, nil
}

func (stubSettlementService) DiscardSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return &domain.Settlement{ID: id}, nil
}

func (stubSettlementService) VoidSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return &domain.Settlement{ID: id}, nil
}

type stubSettlementPayment struct{}

func (stubSettlementPayment) MarkSettlementPaid(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	return &domain.Settlement{ID: settlementID}, nil
}

type stubSharePayment struct{}

func (stubSharePayment) MarkSharePaid(ctx context.Context, shareID string) (*domain.Share, error) {
	return &domain.Share{ID: shareID}, nil
}

func (stubSharePayment) UnmarkSharePaid(ctx context.Context, shareID string) (*domain.Share, error) {
	return &domain.Share{ID: shareID}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
