package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
)

// SharePaymentService marks and unmarks individual shares.
type SharePaymentService interface {
	MarkSharePaid(ctx context.Context, shareID string) (*domain.Share, error)
	UnmarkSharePaid(ctx context.Context, shareID string) (*domain.Share, error)
}

// ShareHandler handles share payment HTTP requests.
type ShareHandler struct {
	paymentUC SharePaymentService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(paymentUC SharePaymentService) *ShareHandler {
	return &ShareHandler{paymentUC: paymentUC}
}

// Pay marks a share as paid. Safe to retry.
func (h *ShareHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	share, err := h.paymentUC.MarkSharePaid(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to pay share", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ShareFromDomain(share))
}

// Unpay reverts a mistakenly paid share to unpaid.
func (h *ShareHandler) Unpay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	share, err := h.paymentUC.UnmarkSharePaid(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to unpay share", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ShareFromDomain(share))
}
