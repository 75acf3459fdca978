package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

func TestCreateExpenseRequestToUseCaseInput(t *testing.T) {
	date := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	req := CreateExpenseRequest{
		PayerID:        "m-1",
		Amount:         decimal.NewFromInt(90),
		Method:         "equal",
		Description:    "dinner",
		Date:           &date,
		ParticipantIDs: []string{"m-1", "m-2"},
	}

	input := req.ToUseCaseInput("grp-1")

	if input.GroupID != "grp-1" {
		t.Fatalf("expected group from URL, got %s", input.GroupID)
	}
	if input.Method != domain.SplitEqual {
		t.Fatalf("expected equal method, got %s", input.Method)
	}
	if !input.Date.Equal(date) {
		t.Fatalf("expected explicit date preserved, got %s", input.Date)
	}
	if len(input.ParticipantIDs) != 2 {
		t.Fatalf("expected participants forwarded, got %v", input.ParticipantIDs)
	}
}

func TestCreateExpenseRequestDefaultsDate(t *testing.T) {
	req := CreateExpenseRequest{
		PayerID: "m-1",
		Amount:  decimal.NewFromInt(10),
		Method:  "equal",
	}

	input := req.ToUseCaseInput("grp-1")

	if !input.Date.IsZero() {
		t.Fatalf("expected zero date when omitted, got %s", input.Date)
	}
}

func TestRecordSettlementRequestToUseCaseInput(t *testing.T) {
	req := RecordSettlementRequest{
		PayerID: "m-2",
		PayeeID: "m-1",
		Amount:  decimal.NewFromInt(30),
		Notes:   "cash",
	}

	input := req.ToUseCaseInput("grp-1")

	if input.GroupID != "grp-1" || input.PayerID != "m-2" || input.PayeeID != "m-1" {
		t.Fatalf("unexpected input %+v", input)
	}
	if !input.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected amount 30, got %s", input.Amount)
	}
}
