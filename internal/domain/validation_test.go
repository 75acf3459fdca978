package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateGroupName(t *testing.T) {
	if err := ValidateGroupName("Ski Trip 2026"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateGroupName("  "); err == nil {
		t.Error("expected error for blank name")
	}
	if err := ValidateGroupName(strings.Repeat("x", 256)); err == nil {
		t.Error("expected error for oversized name")
	}
}

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("USD"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateCurrency("usd"); err != nil {
		t.Errorf("lowercase code should normalize: %v", err)
	}
	if err := ValidateCurrency("XXX"); err == nil {
		t.Error("expected error for unknown currency")
	}
	// zero-decimal currencies don't fit two-decimal splitting
	if err := ValidateCurrency("JPY"); err == nil {
		t.Error("expected error for zero-decimal currency")
	}
	if err := ValidateCurrency("KRW"); err == nil {
		t.Error("expected error for zero-decimal currency")
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromFloat(10.50)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAmount(decimal.Zero); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ValidateAmount(decimal.RequireFromString("1.005")); err != ErrCurrencyMismatch {
		t.Errorf("expected ErrCurrencyMismatch for sub-cent amount, got %v", err)
	}
	if err := ValidateAmount(decimal.RequireFromString("1000000001")); err == nil {
		t.Error("expected error for amount above maximum")
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", limit)
	}
}
