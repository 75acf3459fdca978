package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitMethod determines how an expense is divided between participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitExact      SplitMethod = "exact"
)

// Valid reports whether the split method is one of the known variants.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitPercentage, SplitExact:
		return true
	}
	return false
}

// Expense is a single shared cost paid by one member on behalf of a
// subset of group members.
type Expense struct {
	ID          string
	GroupID     string
	PayerID     string
	Amount      decimal.Decimal
	Method      SplitMethod
	Description string
	Date        time.Time
	Shares      []*Share
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Share is one member's owed portion of an expense. No share is created
// for the payer; their own portion is excluded from debt.
type Share struct {
	ID           string
	ExpenseID    string
	MemberID     string
	Amount       decimal.Decimal
	Paid         bool
	SettlementID *string
	CreatedAt    time.Time
	PaidAt       *time.Time
}

// Validate checks expense invariants. The sum of shares plus the
// payer's own portion must equal the expense amount, so the share
// total can never exceed the amount.
func (e *Expense) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !e.Method.Valid() {
		return ErrInvalidWeights
	}

	total := decimal.Zero
	for _, s := range e.Shares {
		if s.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
		if s.MemberID == e.PayerID {
			return ErrInvalidParticipants
		}
		total = total.Add(s.Amount)
	}

	if total.GreaterThan(e.Amount) {
		return ErrSplitMismatch
	}
	return nil
}

// Settled reports whether every share of the expense has been paid.
func (e *Expense) Settled() bool {
	for _, s := range e.Shares {
		if !s.Paid {
			return false
		}
	}
	return len(e.Shares) > 0
}
