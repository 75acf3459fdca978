package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
)

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	Members   []*MemberResponse `json:"members"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// MemberResponse represents a member in API responses.
type MemberResponse struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// GroupFromDomain converts domain group to response.
func GroupFromDomain(g *domain.Group) *GroupResponse {
	members := make([]*MemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = MemberFromDomain(m)
	}
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   members,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// GroupsFromDomain converts domain groups to responses.
func GroupsFromDomain(groups []*domain.Group) []*GroupResponse {
	result := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		result[i] = GroupFromDomain(g)
	}
	return result
}

// MemberFromDomain converts domain member to response.
func MemberFromDomain(m *domain.Member) *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		GroupID:  m.GroupID,
		Name:     m.Name,
		JoinedAt: m.JoinedAt,
	}
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"group_id"`
	PayerID     string           `json:"payer_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Method      string           `json:"method"`
	Description string           `json:"description,omitempty"`
	Date        time.Time        `json:"date"`
	Shares      []*ShareResponse `json:"shares"`
	Settled     bool             `json:"settled"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ShareResponse represents a share in API responses.
type ShareResponse struct {
	ID           string          `json:"id"`
	ExpenseID    string          `json:"expense_id"`
	MemberID     string          `json:"member_id"`
	Amount       decimal.Decimal `json:"amount"`
	Paid         bool            `json:"paid"`
	SettlementID *string         `json:"settlement_id,omitempty"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
}

// ExpenseFromDomain converts domain expense to response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	shares := make([]*ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = ShareFromDomain(s)
	}
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		Method:      string(e.Method),
		Description: e.Description,
		Date:        e.Date,
		Shares:      shares,
		Settled:     e.Settled(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// ShareFromDomain converts domain share to response.
func ShareFromDomain(s *domain.Share) *ShareResponse {
	return &ShareResponse{
		ID:           s.ID,
		ExpenseID:    s.ExpenseID,
		MemberID:     s.MemberID,
		Amount:       s.Amount,
		Paid:         s.Paid,
		SettlementID: s.SettlementID,
		PaidAt:       s.PaidAt,
	}
}

// BalanceResponse represents one member's net balance.
type BalanceResponse struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// BalancesFromDomain converts domain balances to responses.
func BalancesFromDomain(balances []domain.Balance) []BalanceResponse {
	result := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceResponse{MemberID: b.MemberID, Amount: b.Amount}
	}
	return result
}

// SettlementResponse represents a settlement in API responses.
type SettlementResponse struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	PayerID   string          `json:"payer_id"`
	PayeeID   string          `json:"payee_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	ShareIDs  []string        `json:"share_ids,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// SettlementFromDomain converts domain settlement to response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:        s.ID,
		GroupID:   s.GroupID,
		PayerID:   s.PayerID,
		PayeeID:   s.PayeeID,
		Amount:    s.Amount,
		Status:    string(s.Status),
		ShareIDs:  s.ShareIDs,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		PaidAt:    s.PaidAt,
	}
}

// SettlementsFromDomain converts domain settlements to responses.
func SettlementsFromDomain(settlements []*domain.Settlement) []*SettlementResponse {
	result := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		result[i] = SettlementFromDomain(s)
	}
	return result
}

// ListGroupsResponse wraps a page of groups.
type ListGroupsResponse struct {
	Groups []*GroupResponse `json:"groups"`
	Total  int64            `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
