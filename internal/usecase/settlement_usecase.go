package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// SettlementUseCase generates, records and manages settlements.
type SettlementUseCase struct {
	txManager      TransactionManager
	groupRepo      GroupRepository
	expenseRepo    ExpenseRepository
	shareRepo      ShareRepository
	settlementRepo SettlementRepository
	balances       *BalanceUseCase
	locker         GroupLocker
	idGen          IDGenerator
	metrics        *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	groupRepo GroupRepository,
	expenseRepo ExpenseRepository,
	shareRepo ShareRepository,
	settlementRepo SettlementRepository,
	balances *BalanceUseCase,
	locker GroupLocker,
	idGen IDGenerator,
	m *metrics.Metrics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:      txManager,
		groupRepo:      groupRepo,
		expenseRepo:    expenseRepo,
		shareRepo:      shareRepo,
		settlementRepo: settlementRepo,
		balances:       balances,
		locker:         locker,
		idGen:          idGen,
		metrics:        m,
	}
}

// SuggestSettlements computes the minimal transfer plan for a group and
// replaces any previous suggested settlements with it. At most one
// generation runs per group at a time; a concurrent caller gets
// ErrGroupBusy rather than waiting.
func (uc *SettlementUseCase) SuggestSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	if _, err := uc.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	acquired, err := uc.locker.Acquire(ctx, groupID, SuggestLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrGroupBusy
	}
	defer uc.locker.Release(ctx, groupID)

	balances, err := uc.balances.ComputeBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	transfers, err := domain.SimplifyDebts(balances)
	if err != nil {
		return nil, err
	}

	unpaid, err := uc.unpaidSharesByDebt(ctx, groupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	settlements := make([]*domain.Settlement, 0, len(transfers))
	for _, t := range transfers {
		settlements = append(settlements, &domain.Settlement{
			ID:        uc.idGen.Generate(),
			GroupID:   groupID,
			PayerID:   t.PayerID,
			PayeeID:   t.PayeeID,
			Amount:    t.Amount,
			Status:    domain.SettlementSuggested,
			ShareIDs:  matchShares(unpaid, t),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.settlementRepo.DiscardSuggested(ctx, tx, groupID, now); err != nil {
		return nil, err
	}
	for _, s := range settlements {
		if err := uc.settlementRepo.Create(ctx, tx, s); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.SettlementsSuggested.Add(float64(len(settlements)))

	return settlements, nil
}

// RecordSettlementInput represents input for recording a manual
// settlement between two members.
type RecordSettlementInput struct {
	GroupID string
	PayerID string
	PayeeID string
	Amount  decimal.Decimal
	Notes   string
}

// RecordSettlement records a settlement created by a user rather than
// the optimizer. It starts in confirmed state.
func (uc *SettlementUseCase) RecordSettlement(ctx context.Context, input RecordSettlementInput) (*domain.Settlement, error) {
	group, err := uc.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(input.PayerID) || !group.HasMember(input.PayeeID) {
		return nil, domain.ErrNotGroupMember
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	settlement := &domain.Settlement{
		ID:        uc.idGen.Generate(),
		GroupID:   input.GroupID,
		PayerID:   input.PayerID,
		PayeeID:   input.PayeeID,
		Amount:    input.Amount,
		Status:    domain.SettlementConfirmed,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := settlement.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.settlementRepo.Create(ctx, tx, settlement); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return settlement, nil
}

// GetSettlement retrieves a settlement.
func (uc *SettlementUseCase) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.settlementRepo.GetByID(ctx, id)
}

// ListSettlements lists a group's settlements.
func (uc *SettlementUseCase) ListSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	if _, err := uc.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return uc.settlementRepo.ListByGroup(ctx, groupID)
}

// ConfirmSettlement moves a suggested settlement to confirmed.
func (uc *SettlementUseCase) ConfirmSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.transition(ctx, id, domain.SettlementConfirmed)
}

// DiscardSettlement discards a suggested or confirmed settlement.
func (uc *SettlementUseCase) DiscardSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.transition(ctx, id, domain.SettlementDiscarded)
}

// VoidSettlement reverses a paid settlement. Shares the settlement had
// cleared revert to unpaid, restoring the debts it had extinguished.
func (uc *SettlementUseCase) VoidSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	settlement, err := uc.settlementRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if settlement.Status == domain.SettlementVoided {
		return nil, domain.ErrSettlementVoided
	}
	if !settlement.Status.CanTransition(domain.SettlementVoided) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	for _, shareID := range settlement.ShareIDs {
		if err := uc.shareRepo.MarkUnpaid(ctx, tx, shareID); err != nil {
			return nil, err
		}
	}
	if err := uc.settlementRepo.UpdateStatus(ctx, tx, id, domain.SettlementVoided, now, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.SettlementsVoided.Inc()

	settlement.Status = domain.SettlementVoided
	settlement.UpdatedAt = now

	return settlement, uc.balances.Invalidate(ctx, settlement.GroupID)
}

func (uc *SettlementUseCase) transition(ctx context.Context, id string, to domain.SettlementStatus) (*domain.Settlement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	settlement, err := uc.settlementRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if settlement.Status == domain.SettlementVoided {
		return nil, domain.ErrSettlementVoided
	}
	if !settlement.Status.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := uc.settlementRepo.UpdateStatus(ctx, tx, id, to, now, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	settlement.Status = to
	settlement.UpdatedAt = now

	return settlement, nil
}

// debtShares indexes unpaid shares by debtor/creditor pair in creation
// order.
type debtShares map[pairKey][]*domain.Share

type pairKey struct {
	payerID string
	payeeID string
}

func (uc *SettlementUseCase) unpaidSharesByDebt(ctx context.Context, groupID string) (debtShares, error) {
	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	unpaid := make(debtShares)
	for _, e := range expenses {
		for _, s := range e.Shares {
			if s.Paid {
				continue
			}
			key := pairKey{payerID: s.MemberID, payeeID: e.PayerID}
			unpaid[key] = append(unpaid[key], s)
		}
	}

	return unpaid, nil
}

// matchShares links a transfer to the unpaid shares it covers, but only
// when the pair's shares sum exactly to the transfer amount. Otherwise
// the settlement stands alone: linking a partial set would either leave
// cleared debt behind or clear debt the transfer did not cover.
func matchShares(unpaid debtShares, t domain.Transfer) []string {
	shares := unpaid[pairKey{payerID: t.PayerID, payeeID: t.PayeeID}]
	if len(shares) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	if !total.Equal(t.Amount) {
		return nil
	}

	ids := make([]string, 0, len(shares))
	for _, s := range shares {
		ids = append(ids, s.ID)
	}
	return ids
}
