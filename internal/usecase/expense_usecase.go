package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// ExpenseUseCase handles expense business logic.
type ExpenseUseCase struct {
	txManager   TransactionManager
	groupRepo   GroupRepository
	expenseRepo ExpenseRepository
	balances    *BalanceUseCase
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	groupRepo GroupRepository,
	expenseRepo ExpenseRepository,
	balances *BalanceUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		groupRepo:   groupRepo,
		expenseRepo: expenseRepo,
		balances:    balances,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateExpenseInput represents input for creating an expense.
// ParticipantIDs defaults to every group member when empty. Weights
// carries percentage weights or exact amounts depending on Method.
type CreateExpenseInput struct {
	GroupID        string
	PayerID        string
	Amount         decimal.Decimal
	Method         domain.SplitMethod
	Description    string
	Date           time.Time
	ParticipantIDs []string
	Weights        map[string]decimal.Decimal
}

// CreateExpense splits the amount between participants and persists
// the expense with its shares as one atomic write.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	group, err := uc.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !group.HasMember(input.PayerID) {
		return nil, domain.ErrNotGroupMember
	}

	participants, err := resolveParticipants(group, input.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	amounts, err := domain.SplitShares(input.Amount, input.Method, participants, input.Weights)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		GroupID:     input.GroupID,
		PayerID:     input.PayerID,
		Amount:      input.Amount,
		Method:      input.Method,
		Description: input.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	expense.Shares = uc.buildShares(expense, amounts, now)

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.expenseRepo.CreateWithShares(ctx, tx, expense); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.ExpensesCreated.Inc()
	uc.metrics.ExpenseAmount.Observe(input.Amount.InexactFloat64())

	if err := uc.balances.Invalidate(ctx, input.GroupID); err != nil {
		return nil, err
	}

	return expense, nil
}

// UpdateExpenseInput represents input for editing an expense.
type UpdateExpenseInput struct {
	ExpenseID      string
	Amount         decimal.Decimal
	Method         domain.SplitMethod
	Description    string
	Date           time.Time
	ParticipantIDs []string
	Weights        map[string]decimal.Decimal
}

// UpdateExpense re-splits and rewrites an expense. Rejected once any
// share has been paid; the caller must record a compensating
// adjustment expense instead so the audit trail stays intact.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.Expense, error) {
	existing, err := uc.expenseRepo.GetByID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}

	group, err := uc.groupRepo.GetByID(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	participants, err := resolveParticipants(group, input.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	amounts, err := domain.SplitShares(input.Amount, input.Method, participants, input.Weights)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := &domain.Expense{
		ID:          existing.ID,
		GroupID:     existing.GroupID,
		PayerID:     existing.PayerID,
		Amount:      input.Amount,
		Method:      input.Method,
		Description: input.Description,
		Date:        input.Date,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   now,
	}
	if updated.Date.IsZero() {
		updated.Date = existing.Date
	}
	updated.Shares = uc.buildShares(updated, amounts, now)

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// checked under the shares' row locks so a payment committing
	// concurrently cannot slip in before the rewrite
	hasPaid, err := uc.expenseRepo.HasPaidShares(ctx, tx, input.ExpenseID)
	if err != nil {
		return nil, err
	}
	if hasPaid {
		return nil, domain.ErrExpenseSettled
	}

	if err := uc.expenseRepo.Update(ctx, tx, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := uc.balances.Invalidate(ctx, existing.GroupID); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteExpense removes an expense and its shares. Rejected once any
// share has been paid.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, id string) error {
	expense, err := uc.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	hasPaid, err := uc.expenseRepo.HasPaidShares(ctx, tx, id)
	if err != nil {
		return err
	}
	if hasPaid {
		return domain.ErrExpenseSettled
	}

	if err := uc.expenseRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.metrics.ExpensesDeleted.Inc()

	return uc.balances.Invalidate(ctx, expense.GroupID)
}

// GetExpense retrieves an expense with its shares.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return uc.expenseRepo.GetByID(ctx, id)
}

// ListExpenses lists a group's expenses with their shares.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	if _, err := uc.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return uc.expenseRepo.ListByGroup(ctx, groupID)
}

// buildShares materializes share rows from split amounts. The payer's
// own portion and zero-amount remainders are skipped; share order is
// ascending member ID so writes are deterministic.
func (uc *ExpenseUseCase) buildShares(expense *domain.Expense, amounts map[string]decimal.Decimal, now time.Time) []*domain.Share {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	shares := make([]*domain.Share, 0, len(ids))
	for _, memberID := range ids {
		if memberID == expense.PayerID || amounts[memberID].IsZero() {
			continue
		}
		shares = append(shares, &domain.Share{
			ID:        uc.idGen.Generate(),
			ExpenseID: expense.ID,
			MemberID:  memberID,
			Amount:    amounts[memberID],
			CreatedAt: now,
		})
	}

	return shares
}

// resolveParticipants maps participant IDs onto group members,
// defaulting to the whole group.
func resolveParticipants(group *domain.Group, participantIDs []string) ([]*domain.Member, error) {
	if len(participantIDs) == 0 {
		return group.Members, nil
	}

	byID := make(map[string]*domain.Member, len(group.Members))
	for _, m := range group.Members {
		byID[m.ID] = m
	}

	participants := make([]*domain.Member, 0, len(participantIDs))
	for _, id := range participantIDs {
		m, ok := byID[id]
		if !ok {
			return nil, domain.ErrNotGroupMember
		}
		participants = append(participants, m)
	}

	return participants, nil
}
