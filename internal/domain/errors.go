package domain

import "errors"

var (
	// Group / member errors
	ErrGroupNotFound    = errors.New("group not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrNotGroupMember   = errors.New("member does not belong to group")
	ErrMemberHasBalance = errors.New("member has a non-zero balance")
	ErrMemberHasShares  = errors.New("member is referenced by expense shares")

	// Split errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidParticipants = errors.New("participants must be non-empty and unique")
	ErrInvalidWeights      = errors.New("invalid split weights")
	ErrSplitMismatch       = errors.New("exact amounts do not sum to total")

	// Expense / share errors
	ErrExpenseNotFound = errors.New("expense not found")
	ErrShareNotFound   = errors.New("share not found")
	ErrExpenseSettled  = errors.New("expense has paid shares and cannot be modified")
	ErrShareSettled    = errors.New("share was cleared by a settlement")

	// Settlement errors
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrSettlementVoided   = errors.New("settlement is voided")
	ErrSamePayerPayee     = errors.New("payer and payee must differ")
	ErrInvalidTransition  = errors.New("invalid settlement status transition")

	// Ledger errors
	ErrUnbalancedLedger = errors.New("group balances do not sum to zero")
	ErrCurrencyMismatch = errors.New("amount precision does not match group currency")
	ErrGroupBusy        = errors.New("settlement generation already in progress for group")

	// Store errors
	ErrStoreTimeout = errors.New("store operation timed out")
)
