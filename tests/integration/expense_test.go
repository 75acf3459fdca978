package integration

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/adapter/http/dto"
)

func TestExpenseCreationAndBalances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := newTestEnv(t)

	var group dto.GroupResponse
	status := env.do(t, http.MethodPost, "/api/v1/groups", dto.CreateGroupRequest{
		Name:        "trip",
		Currency:    "USD",
		MemberNames: []string{"alice", "bob", "carol"},
	}, &group)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating group, got %d", status)
	}
	if len(group.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(group.Members))
	}

	payer := group.Members[0]

	var expense dto.ExpenseResponse
	status = env.do(t, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", dto.CreateExpenseRequest{
		PayerID:     payer.ID,
		Amount:      decimal.NewFromInt(90),
		Method:      "equal",
		Description: "dinner",
	}, &expense)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating expense, got %d", status)
	}

	// the payer's own portion produces no share
	if len(expense.Shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(expense.Shares))
	}
	for _, share := range expense.Shares {
		if !share.Amount.Equal(decimal.NewFromInt(30)) {
			t.Fatalf("expected share of 30, got %s", share.Amount)
		}
		if share.Paid {
			t.Fatalf("expected new share to be unpaid")
		}
	}

	var balances []dto.BalanceResponse
	status = env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil, &balances)
	if status != http.StatusOK {
		t.Fatalf("expected 200 fetching balances, got %d", status)
	}

	sum := decimal.Zero
	byMember := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		sum = sum.Add(b.Amount)
		byMember[b.MemberID] = b.Amount
	}

	if !sum.IsZero() {
		t.Fatalf("expected balances to sum to zero, got %s", sum)
	}
	if !byMember[payer.ID].Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected payer balance 60, got %s", byMember[payer.ID])
	}
	for _, m := range group.Members[1:] {
		if !byMember[m.ID].Equal(decimal.NewFromInt(-30)) {
			t.Fatalf("expected debtor balance -30, got %s", byMember[m.ID])
		}
	}
}

func TestExpenseUnevenSplitDistributesRemainder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := newTestEnv(t)

	var group dto.GroupResponse
	env.do(t, http.MethodPost, "/api/v1/groups", dto.CreateGroupRequest{
		Name:        "roadtrip",
		Currency:    "EUR",
		MemberNames: []string{"dan", "erin", "frank"},
	}, &group)

	payer := group.Members[0]

	var expense dto.ExpenseResponse
	status := env.do(t, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", dto.CreateExpenseRequest{
		PayerID: payer.ID,
		Amount:  decimal.NewFromInt(100),
		Method:  "equal",
	}, &expense)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating expense, got %d", status)
	}

	// 100.00 across 3 people leaves a remainder cent; no portion may
	// differ from another by more than one minor unit
	cent := decimal.New(1, -2)
	for _, a := range expense.Shares {
		for _, b := range expense.Shares {
			if a.Amount.Sub(b.Amount).Abs().GreaterThan(cent) {
				t.Fatalf("share amounts differ by more than a cent: %s vs %s", a.Amount, b.Amount)
			}
		}
	}

	var balances []dto.BalanceResponse
	env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil, &balances)

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	if !sum.IsZero() {
		t.Fatalf("expected balances to sum to zero, got %s", sum)
	}
}

func TestExpenseCentAmountsSurviveStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := newTestEnv(t)

	var group dto.GroupResponse
	env.do(t, http.MethodPost, "/api/v1/groups", dto.CreateGroupRequest{
		Name:        "coffee",
		Currency:    "USD",
		MemberNames: []string{"ivan", "judy", "kim"},
	}, &group)

	payer := group.Members[0]

	var created dto.ExpenseResponse
	status := env.do(t, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", dto.CreateExpenseRequest{
		PayerID: payer.ID,
		Amount:  decimal.RequireFromString("10.01"),
		Method:  "equal",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating expense, got %d", status)
	}

	// read back from storage; fractional cents must come back intact,
	// not rounded to whole units
	var fetched dto.ExpenseResponse
	if status := env.do(t, http.MethodGet, "/api/v1/expenses/"+created.ID, nil, &fetched); status != http.StatusOK {
		t.Fatalf("expected 200 fetching expense, got %d", status)
	}

	if !fetched.Amount.Equal(decimal.RequireFromString("10.01")) {
		t.Fatalf("expected stored amount 10.01, got %s", fetched.Amount)
	}

	want := make(map[string]decimal.Decimal, len(created.Shares))
	for _, s := range created.Shares {
		want[s.ID] = s.Amount
	}
	if len(fetched.Shares) != len(created.Shares) {
		t.Fatalf("expected %d shares, got %d", len(created.Shares), len(fetched.Shares))
	}
	low := decimal.RequireFromString("3.33")
	high := decimal.RequireFromString("3.34")
	for _, s := range fetched.Shares {
		if !s.Amount.Equal(want[s.ID]) {
			t.Fatalf("share %s changed across storage: wrote %s, read %s", s.ID, want[s.ID], s.Amount)
		}
		if !s.Amount.Equal(low) && !s.Amount.Equal(high) {
			t.Fatalf("expected share of 3.33 or 3.34, got %s", s.Amount)
		}
	}

	var balances []dto.BalanceResponse
	env.do(t, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil, &balances)

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Amount)
	}
	if !sum.IsZero() {
		t.Fatalf("expected balances to sum to zero, got %s", sum)
	}
}

func TestExpenseUpdateRejectedAfterPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := newTestEnv(t)

	var group dto.GroupResponse
	env.do(t, http.MethodPost, "/api/v1/groups", dto.CreateGroupRequest{
		Name:        "flat",
		Currency:    "USD",
		MemberNames: []string{"gail", "hank"},
	}, &group)

	var expense dto.ExpenseResponse
	env.do(t, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", dto.CreateExpenseRequest{
		PayerID: group.Members[0].ID,
		Amount:  decimal.NewFromInt(40),
		Method:  "equal",
	}, &expense)

	if status := env.do(t, http.MethodPost, "/api/v1/shares/"+expense.Shares[0].ID+"/pay", nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 paying share, got %d", status)
	}

	status := env.do(t, http.MethodPut, "/api/v1/expenses/"+expense.ID, dto.UpdateExpenseRequest{
		Amount: decimal.NewFromInt(60),
		Method: "equal",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 editing settled expense, got %d", status)
	}

	if status := env.do(t, http.MethodDelete, "/api/v1/expenses/"+expense.ID, nil, nil); status != http.StatusConflict {
		t.Fatalf("expected 409 deleting settled expense, got %d", status)
	}
}
