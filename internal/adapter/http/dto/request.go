package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// splitMethodFromString parses the wire value; validity is checked by
// the domain layer.
func splitMethodFromString(s string) domain.SplitMethod {
	return domain.SplitMethod(s)
}

// CreateGroupRequest represents a request to create a group.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Currency    string   `json:"currency"`
	MemberNames []string `json:"member_names,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGroupRequest) ToUseCaseInput() usecase.CreateGroupInput {
	return usecase.CreateGroupInput{
		Name:        r.Name,
		Currency:    r.Currency,
		MemberNames: r.MemberNames,
	}
}

// AddMemberRequest represents a request to add a member to a group.
type AddMemberRequest struct {
	Name string `json:"name"`
}

// CreateExpenseRequest represents a request to create an expense.
type CreateExpenseRequest struct {
	PayerID        string                     `json:"payer_id"`
	Amount         decimal.Decimal            `json:"amount"`
	Method         string                     `json:"method"`
	Description    string                     `json:"description,omitempty"`
	Date           *time.Time                 `json:"date,omitempty"`
	ParticipantIDs []string                   `json:"participant_ids,omitempty"`
	Weights        map[string]decimal.Decimal `json:"weights,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput(groupID string) usecase.CreateExpenseInput {
	input := usecase.CreateExpenseInput{
		GroupID:        groupID,
		PayerID:        r.PayerID,
		Amount:         r.Amount,
		Method:         splitMethodFromString(r.Method),
		Description:    r.Description,
		ParticipantIDs: r.ParticipantIDs,
		Weights:        r.Weights,
	}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// UpdateExpenseRequest represents a request to edit an expense.
type UpdateExpenseRequest struct {
	Amount         decimal.Decimal            `json:"amount"`
	Method         string                     `json:"method"`
	Description    string                     `json:"description,omitempty"`
	Date           *time.Time                 `json:"date,omitempty"`
	ParticipantIDs []string                   `json:"participant_ids,omitempty"`
	Weights        map[string]decimal.Decimal `json:"weights,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput(expenseID string) usecase.UpdateExpenseInput {
	input := usecase.UpdateExpenseInput{
		ExpenseID:      expenseID,
		Amount:         r.Amount,
		Method:         splitMethodFromString(r.Method),
		Description:    r.Description,
		ParticipantIDs: r.ParticipantIDs,
		Weights:        r.Weights,
	}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// RecordSettlementRequest represents a request to record a manual
// settlement.
type RecordSettlementRequest struct {
	PayerID string          `json:"payer_id"`
	PayeeID string          `json:"payee_id"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordSettlementRequest) ToUseCaseInput(groupID string) usecase.RecordSettlementInput {
	return usecase.RecordSettlementInput{
		GroupID: groupID,
		PayerID: r.PayerID,
		PayeeID: r.PayeeID,
		Amount:  r.Amount,
		Notes:   r.Notes,
	}
}
