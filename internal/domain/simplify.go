package domain

import "github.com/shopspring/decimal"

// Transfer is a proposed payment from one member to another produced by
// debt simplification.
type Transfer struct {
	PayerID string
	PayeeID string
	Amount  decimal.Decimal
}

// SimplifyDebts reduces a balance vector to a minimal set of transfers
// that zero every balance (greedy min cash-flow). Each round matches
// the largest creditor against the largest-magnitude debtor, breaking
// ties toward the lower member ID, and moves the smaller of the two
// amounts between them. At least one side reaches zero per round, so
// at most N-1 transfers are emitted for N members with non-zero
// balance.
//
// Returns ErrUnbalancedLedger if the balances do not sum to zero; that
// signals a defect in balance computation, never user input.
func SimplifyDebts(balances []Balance) ([]Transfer, error) {
	if !SumBalances(balances).IsZero() {
		return nil, ErrUnbalancedLedger
	}

	var creditors, debtors []Balance
	for _, b := range balances {
		switch {
		case b.Amount.IsPositive():
			creditors = append(creditors, b)
		case b.Amount.IsNegative():
			debtors = append(debtors, Balance{MemberID: b.MemberID, Amount: b.Amount.Neg()})
		}
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largestBalance(creditors)
		di := largestBalance(debtors)

		amount := decimal.Min(creditors[ci].Amount, debtors[di].Amount)
		transfers = append(transfers, Transfer{
			PayerID: debtors[di].MemberID,
			PayeeID: creditors[ci].MemberID,
			Amount:  amount,
		})

		creditors[ci].Amount = creditors[ci].Amount.Sub(amount)
		debtors[di].Amount = debtors[di].Amount.Sub(amount)

		if creditors[ci].Amount.IsZero() {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtors[di].Amount.IsZero() {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	return transfers, nil
}

// largestBalance returns the index of the largest amount, preferring
// the lower member ID on ties.
func largestBalance(balances []Balance) int {
	best := 0
	for i := 1; i < len(balances); i++ {
		cmp := balances[i].Amount.Cmp(balances[best].Amount)
		if cmp > 0 || (cmp == 0 && balances[i].MemberID < balances[best].MemberID) {
			best = i
		}
	}
	return best
}
