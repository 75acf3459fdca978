package domain

import "github.com/shopspring/decimal"

// Balance is a member's net position in a group. Positive means the
// group owes the member; negative means the member owes the group.
type Balance struct {
	MemberID string
	Amount   decimal.Decimal
}

// SumBalances returns the sum of all balance amounts. In a consistent
// group ledger this is always exactly zero.
func SumBalances(balances []Balance) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	return sum
}
