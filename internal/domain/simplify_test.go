package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
)

func balance(memberID, amount string) domain.Balance {
	return domain.Balance{MemberID: memberID, Amount: dec(amount)}
}

// applyTransfers replays transfers against the balance vector.
func applyTransfers(balances []domain.Balance, transfers []domain.Transfer) []domain.Balance {
	byID := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		byID[b.MemberID] = b.Amount
	}
	for _, t := range transfers {
		byID[t.PayerID] = byID[t.PayerID].Add(t.Amount)
		byID[t.PayeeID] = byID[t.PayeeID].Sub(t.Amount)
	}

	result := make([]domain.Balance, 0, len(byID))
	for id, amount := range byID {
		result = append(result, domain.Balance{MemberID: id, Amount: amount})
	}
	return result
}

func TestSimplifyDebts_SingleCreditor(t *testing.T) {
	balances := []domain.Balance{
		balance("alice", "60.00"),
		balance("bob", "-30.00"),
		balance("carol", "-30.00"),
	}

	transfers, err := domain.SimplifyDebts(balances)
	require.NoError(t, err)
	require.Len(t, transfers, 2)

	for _, tr := range transfers {
		assert.Equal(t, "alice", tr.PayeeID)
		assert.True(t, tr.Amount.Equal(dec("30.00")))
	}
	assert.Equal(t, "bob", transfers[0].PayerID, "equal debts resolve to lower id first")
	assert.Equal(t, "carol", transfers[1].PayerID)

	for _, b := range applyTransfers(balances, transfers) {
		assert.True(t, b.Amount.IsZero(), "member %s not settled", b.MemberID)
	}
}

func TestSimplifyDebts_TransferBound(t *testing.T) {
	tests := []struct {
		name     string
		balances []domain.Balance
		maxLen   int
	}{
		{
			name: "chain of debts",
			balances: []domain.Balance{
				balance("a", "-10.00"),
				balance("b", "-20.00"),
				balance("c", "-30.00"),
				balance("d", "25.00"),
				balance("e", "35.00"),
			},
			maxLen: 4,
		},
		{
			name: "pairwise offsets",
			balances: []domain.Balance{
				balance("a", "5.00"),
				balance("b", "-5.00"),
				balance("c", "7.00"),
				balance("d", "-7.00"),
			},
			maxLen: 3,
		},
		{
			name:     "already settled",
			balances: []domain.Balance{balance("a", "0"), balance("b", "0")},
			maxLen:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfers, err := domain.SimplifyDebts(tt.balances)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(transfers), tt.maxLen)

			for _, tr := range transfers {
				assert.True(t, tr.Amount.IsPositive(), "every transfer amount must be positive")
				assert.NotEqual(t, tr.PayerID, tr.PayeeID)
			}

			for _, b := range applyTransfers(tt.balances, transfers) {
				assert.True(t, b.Amount.IsZero(), "member %s not settled", b.MemberID)
			}
		})
	}
}

func TestSimplifyDebts_Deterministic(t *testing.T) {
	balances := []domain.Balance{
		balance("d", "-12.34"),
		balance("c", "50.00"),
		balance("b", "-25.33"),
		balance("a", "-12.33"),
	}

	first, err := domain.SimplifyDebts(balances)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := domain.SimplifyDebts(balances)
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].PayerID, again[j].PayerID)
			assert.Equal(t, first[j].PayeeID, again[j].PayeeID)
			assert.True(t, first[j].Amount.Equal(again[j].Amount))
		}
	}
}

func TestSimplifyDebts_UnbalancedInput(t *testing.T) {
	_, err := domain.SimplifyDebts([]domain.Balance{
		balance("a", "10.00"),
		balance("b", "-9.99"),
	})
	assert.ErrorIs(t, err, domain.ErrUnbalancedLedger)
}
