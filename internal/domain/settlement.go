package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementSuggested SettlementStatus = "suggested"
	SettlementConfirmed SettlementStatus = "confirmed"
	SettlementPaid      SettlementStatus = "paid"
	SettlementDiscarded SettlementStatus = "discarded"
	SettlementVoided    SettlementStatus = "voided"
)

// Valid reports whether the status is a known variant.
func (s SettlementStatus) Valid() bool {
	switch s {
	case SettlementSuggested, SettlementConfirmed, SettlementPaid,
		SettlementDiscarded, SettlementVoided:
		return true
	}
	return false
}

// CanTransition reports whether the status may move to the target state.
// Paying a suggested settlement is allowed directly; the confirmation
// step is implicit in that case. Paid settlements may only be voided,
// never deleted.
func (s SettlementStatus) CanTransition(to SettlementStatus) bool {
	switch s {
	case SettlementSuggested:
		return to == SettlementConfirmed || to == SettlementDiscarded || to == SettlementPaid
	case SettlementConfirmed:
		return to == SettlementPaid || to == SettlementDiscarded
	case SettlementPaid:
		return to == SettlementVoided
	}
	return false
}

// Settlement is a recorded or suggested transfer from payer to payee
// that reduces group balances toward zero.
type Settlement struct {
	ID        string
	GroupID   string
	PayerID   string
	PayeeID   string
	Amount    decimal.Decimal
	Status    SettlementStatus
	ShareIDs  []string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

// ClearsShares reports whether paying the settlement settles specific
// shares instead of standing as an independent ledger entry. A
// share-linked settlement affects balances through the shares it flips
// to paid; a standalone settlement is aggregated directly.
func (s *Settlement) ClearsShares() bool {
	return len(s.ShareIDs) > 0
}

// Validate checks settlement invariants.
func (s *Settlement) Validate() error {
	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if s.PayerID == s.PayeeID {
		return ErrSamePayerPayee
	}
	if !s.Status.Valid() {
		return ErrInvalidTransition
	}
	return nil
}
