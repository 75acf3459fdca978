package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidGroupName  = errors.New("invalid group name")
	ErrInvalidMemberName = errors.New("invalid member name")
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrAmountTooLarge    = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxNameLength    = 255
	MaxExpenseAmount = "1000000000" // 1 billion
)

// Valid currency codes (ISO 4217). Restricted to currencies with a
// minor-unit exponent of 2; splitting assumes two-decimal amounts, so
// zero-decimal currencies such as JPY and KRW are not accepted.
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "CNY": true,
	"AUD": true, "CAD": true, "CHF": true, "SEK": true,
	"NZD": true, "SGD": true, "NOK": true, "MXN": true,
	"INR": true, "BRL": true, "ZAR": true, "RUB": true,
	"TRY": true, "HKD": true,
}

// ValidateGroupName validates a group name.
func ValidateGroupName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidGroupName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidGroupName, MaxNameLength)
	}

	return nil
}

// ValidateMemberName validates a member display name.
func ValidateMemberName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidMemberName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidMemberName, MaxNameLength)
	}

	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates an expense or settlement amount. Amounts
// must be positive, representable in minor units, and bounded.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Shift(minorUnitScale).IsInteger() {
		return ErrCurrencyMismatch
	}

	maxAmount, _ := decimal.NewFromString(MaxExpenseAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxExpenseAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
