package usecase

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// BalanceUseCase computes per-member net balances for a group.
type BalanceUseCase struct {
	groupRepo      GroupRepository
	expenseRepo    ExpenseRepository
	settlementRepo SettlementRepository
	cache          Cache
	metrics        *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	groupRepo GroupRepository,
	expenseRepo ExpenseRepository,
	settlementRepo SettlementRepository,
	cache Cache,
	m *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		groupRepo:      groupRepo,
		expenseRepo:    expenseRepo,
		settlementRepo: settlementRepo,
		cache:          cache,
		metrics:        m,
	}
}

// ComputeBalances returns every member's net balance in the group,
// sorted by member ID. Positive means the group owes the member.
//
// Each unpaid share moves its amount from the debtor to the expense
// payer. Each paid standalone settlement moves its amount from the
// payer back to the payee. Settlements that cleared specific shares
// are excluded here: their effect is already represented by the paid
// flag on those shares.
//
// The result always sums to exactly zero; a violation is a defect in
// this calculation or in a store write, never user input, and is
// surfaced as ErrUnbalancedLedger.
func (uc *BalanceUseCase) ComputeBalances(ctx context.Context, groupID string) ([]domain.Balance, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if cached, err := uc.cache.Get(ctx, balanceCacheKey(groupID)); err == nil && len(cached) > 0 {
		var balances []domain.Balance
		if err := json.Unmarshal(cached, &balances); err == nil {
			uc.metrics.BalanceCacheHits.Inc()
			return balances, nil
		}
	}
	uc.metrics.BalanceCacheMisses.Inc()

	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	settlements, err := uc.settlementRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := computeBalances(group.Members, expenses, settlements)
	uc.metrics.BalanceRecomputes.Inc()

	if sum := domain.SumBalances(balances); !sum.IsZero() {
		uc.metrics.UnbalancedLedgers.Inc()
		log.Error().
			Str("group_id", groupID).
			Str("sum", sum.String()).
			Msg("balance invariant violated")

		return nil, domain.ErrUnbalancedLedger
	}

	if data, err := json.Marshal(balances); err == nil {
		_ = uc.cache.Set(ctx, balanceCacheKey(groupID), data, BalanceCacheTTL)
	}

	return balances, nil
}

// Invalidate drops the cached balance vector for a group. Called by
// every mutation before its result is observable.
func (uc *BalanceUseCase) Invalidate(ctx context.Context, groupID string) error {
	return uc.cache.Delete(ctx, balanceCacheKey(groupID))
}

func computeBalances(members []*domain.Member, expenses []*domain.Expense, settlements []*domain.Settlement) []domain.Balance {
	byMember := make(map[string]decimal.Decimal, len(members))
	for _, m := range members {
		byMember[m.ID] = decimal.Zero
	}

	for _, e := range expenses {
		for _, s := range e.Shares {
			if s.Paid {
				continue
			}
			byMember[s.MemberID] = byMember[s.MemberID].Sub(s.Amount)
			byMember[e.PayerID] = byMember[e.PayerID].Add(s.Amount)
		}
	}

	for _, s := range settlements {
		if s.Status != domain.SettlementPaid || s.ClearsShares() {
			continue
		}
		byMember[s.PayerID] = byMember[s.PayerID].Add(s.Amount)
		byMember[s.PayeeID] = byMember[s.PayeeID].Sub(s.Amount)
	}

	balances := make([]domain.Balance, 0, len(byMember))
	for id, amount := range byMember {
		balances = append(balances, domain.Balance{MemberID: id, Amount: amount})
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].MemberID < balances[j].MemberID
	})

	return balances
}
