package usecase

import (
	"context"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

// GroupRepository defines data access for groups and their members.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Group, error)
	Delete(ctx context.Context, id string) error
}

// MemberRepository defines data access for individual members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	Delete(ctx context.Context, id string) error
	HasShares(ctx context.Context, memberID string) (bool, error)
}

// ExpenseRepository defines data access for expenses. An expense and
// its shares are always written as a single unit.
type ExpenseRepository interface {
	CreateWithShares(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error)
	Update(ctx context.Context, tx Transaction, expense *domain.Expense) error
	Delete(ctx context.Context, tx Transaction, id string) error
	HasPaidShares(ctx context.Context, tx Transaction, expenseID string) (bool, error)
}

// ShareRepository defines data access for shares.
type ShareRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Share, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Share, error)
	MarkPaid(ctx context.Context, tx Transaction, id string, settlementID *string, paidAt time.Time) error
	MarkUnpaid(ctx context.Context, tx Transaction, id string) error
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	GetByID(ctx context.Context, id string) (*domain.Settlement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Settlement, error)
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.SettlementStatus, updatedAt time.Time, paidAt *time.Time) error
	DiscardSuggested(ctx context.Context, tx Transaction, groupID string, updatedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for computed balances.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GroupLocker serializes settlement generation per group.
type GroupLocker interface {
	// Acquire attempts to take the lock for a group. Returns false
	// when another holder already has it.
	Acquire(ctx context.Context, groupID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, groupID string) error
}

// Retrier retries an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
