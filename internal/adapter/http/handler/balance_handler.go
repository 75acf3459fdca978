package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	ComputeBalances(ctx context.Context, groupID string) ([]domain.Balance, error)
}

// BalanceHandler handles balance queries.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// GetByGroup returns every member's net balance in the group.
func (h *BalanceHandler) GetByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	balances, err := h.balanceUC.ComputeBalances(r.Context(), groupID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances))
}
