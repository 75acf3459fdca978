package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	SuggestSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	RecordSettlement(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error)
	GetSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	ListSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	ConfirmSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	DiscardSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	VoidSettlement(ctx context.Context, id string) (*domain.Settlement, error)
}

// SettlementPaymentService marks settlements paid.
type SettlementPaymentService interface {
	MarkSettlementPaid(ctx context.Context, settlementID string) (*domain.Settlement, error)
}

// SettlementHandler handles settlement-related HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
	paymentUC    SettlementPaymentService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService, paymentUC SettlementPaymentService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC, paymentUC: paymentUC}
}

// Suggest generates the minimal settlement plan for a group.
func (h *SettlementHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	settlements, err := h.settlementUC.SuggestSettlements(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to suggest settlements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementsFromDomain(settlements))
}

// Record records a manual settlement.
func (h *SettlementHandler) Record(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req dto.RecordSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settlement, err := h.settlementUC.RecordSettlement(r.Context(), req.ToUseCaseInput(groupID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementFromDomain(settlement))
}

// Get retrieves a settlement by ID.
func (h *SettlementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	settlement, err := h.settlementUC.GetSettlement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// ListByGroup lists a group's settlements.
func (h *SettlementHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	settlements, err := h.settlementUC.ListSettlements(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list settlements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementsFromDomain(settlements))
}

// Confirm confirms a suggested settlement.
func (h *SettlementHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.settlementUC.ConfirmSettlement, "failed to confirm settlement")
}

// Discard discards a settlement.
func (h *SettlementHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.settlementUC.DiscardSettlement, "failed to discard settlement")
}

// Void reverses a paid settlement.
func (h *SettlementHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.settlementUC.VoidSettlement, "failed to void settlement")
}

// Pay marks a settlement paid.
func (h *SettlementHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.paymentUC.MarkSettlementPaid, "failed to pay settlement")
}

func (h *SettlementHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*domain.Settlement, error), msg string) {
	id := chi.URLParam(r, "id")

	settlement, err := op(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), msg, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}
