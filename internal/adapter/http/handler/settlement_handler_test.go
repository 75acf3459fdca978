package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

type settlementServiceStub struct {
	suggestFn func(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	recordFn  func(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error)
	getFn     func(ctx context.Context, id string) (*domain.Settlement, error)
	listFn    func(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	confirmFn func(ctx context.Context, id string) (*domain.Settlement, error)
	discardFn func(ctx context.Context, id string) (*domain.Settlement, error)
	voidFn    func(ctx context.Context, id string) (*domain.Settlement, error)
}

func (s *settlementServiceStub) SuggestSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	return s.suggestFn(ctx, groupID)
}

func (s *settlementServiceStub) RecordSettlement(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error) {
	return s.recordFn(ctx, input)
}

func (s *settlementServiceStub) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.getFn(ctx, id)
}

func (s *settlementServiceStub) ListSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	return s.listFn(ctx, groupID)
}

func (s *settlementServiceStub) ConfirmSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.confirmFn(ctx, id)
}

func (s *settlementServiceStub) DiscardSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.discardFn(ctx, id)
}

func (s *settlementServiceStub) VoidSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.voidFn(ctx, id)
}

type settlementPaymentStub struct {
	payFn func(ctx context.Context, settlementID string) (*domain.Settlement, error)
}

func (s *settlementPaymentStub) MarkSettlementPaid(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	return s.payFn(ctx, settlementID)
}

func testSettlement(status domain.SettlementStatus) *domain.Settlement {
	now := time.Now().UTC()
	return &domain.Settlement{
		ID:        "stl-1",
		GroupID:   "grp-1",
		PayerID:   "m-2",
		PayeeID:   "m-1",
		Amount:    decimal.NewFromInt(30),
		Status:    status,
		ShareIDs:  []string{"shr-1"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSettlementHandler_Suggest_Success(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{
		suggestFn: func(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
			if groupID != "grp-1" {
				t.Fatalf("expected grp-1, got %s", groupID)
			}
			return []*domain.Settlement{testSettlement(domain.SettlementSuggested)}, nil
		},
	}, &settlementPaymentStub{})

	req := httptest.NewRequest(http.MethodPost, "/groups/grp-1/settlements/suggest", nil)
	req = setChiURLParam(req, map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Suggest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []*dto.SettlementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Status != "suggested" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSettlementHandler_Suggest_GroupBusy(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{
		suggestFn: func(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
			return nil, domain.ErrGroupBusy
		},
	}, &settlementPaymentStub{})

	req := httptest.NewRequest(http.MethodPost, "/groups/grp-1/settlements/suggest", nil)
	req = setChiURLParam(req, map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Suggest(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSettlementHandler_Record_Success(t *testing.T) {
	var captured usecase.RecordSettlementInput
	handler := NewSettlementHandler(&settlementServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error) {
			captured = input
			return testSettlement(domain.SettlementConfirmed), nil
		},
	}, &settlementPaymentStub{})

	body, _ := json.Marshal(dto.RecordSettlementRequest{
		PayerID: "m-2",
		PayeeID: "m-1",
		Amount:  decimal.NewFromInt(30),
		Notes:   "cash",
	})

	req := httptest.NewRequest(http.MethodPost, "/groups/grp-1/settlements", bytes.NewReader(body))
	req = setChiURLParam(req, map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Record(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.GroupID != "grp-1" || captured.Notes != "cash" {
		t.Fatalf("expected input forwarded, got %+v", captured)
	}
}

func TestSettlementHandler_Pay_Voided(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{}, &settlementPaymentStub{
		payFn: func(ctx context.Context, settlementID string) (*domain.Settlement, error) {
			return nil, domain.ErrSettlementVoided
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/settlements/stl-1/pay", nil)
	req = setChiURLParam(req, map[string]string{"id": "stl-1"})
	rec := httptest.NewRecorder()

	handler.Pay(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSettlementHandler_Confirm_Success(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{
		confirmFn: func(ctx context.Context, id string) (*domain.Settlement, error) {
			return testSettlement(domain.SettlementConfirmed), nil
		},
	}, &settlementPaymentStub{})

	req := httptest.NewRequest(http.MethodPost, "/settlements/stl-1/confirm", nil)
	req = setChiURLParam(req, map[string]string{"id": "stl-1"})
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.SettlementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", resp.Status)
	}
}
