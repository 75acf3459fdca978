package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// PaymentUseCase tracks which shares and settlements have been paid.
type PaymentUseCase struct {
	txManager      TransactionManager
	expenseRepo    ExpenseRepository
	shareRepo      ShareRepository
	settlementRepo SettlementRepository
	balances       *BalanceUseCase
	retrier        Retrier
	metrics        *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	expenseRepo ExpenseRepository,
	shareRepo ShareRepository,
	settlementRepo SettlementRepository,
	balances *BalanceUseCase,
	retrier Retrier,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:      txManager,
		expenseRepo:    expenseRepo,
		shareRepo:      shareRepo,
		settlementRepo: settlementRepo,
		balances:       balances,
		retrier:        retrier,
		metrics:        m,
	}
}

// MarkSharePaid marks a single share as paid. Marking an already-paid
// share is a no-op, not an error, so callers can safely retry.
func (uc *PaymentUseCase) MarkSharePaid(ctx context.Context, shareID string) (*domain.Share, error) {
	var share *domain.Share

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		share, err = uc.shareRepo.GetByIDForUpdate(ctx, tx, shareID)
		if err != nil {
			return err
		}
		if share.Paid {
			return nil
		}

		now := time.Now().UTC()
		if err := uc.shareRepo.MarkPaid(ctx, tx, shareID, nil, now); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		share.Paid = true
		share.PaidAt = &now
		uc.metrics.SharesPaid.Inc()

		return nil
	})
	if err != nil {
		return nil, err
	}

	expense, err := uc.expenseRepo.GetByID(ctx, share.ExpenseID)
	if err != nil {
		return nil, err
	}

	return share, uc.balances.Invalidate(ctx, expense.GroupID)
}

// MarkSettlementPaid marks a settlement as paid and flips every share
// it clears to paid in the same transaction. Idempotent: a settlement
// already paid is returned unchanged.
func (uc *PaymentUseCase) MarkSettlementPaid(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	var settlement *domain.Settlement

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		settlement, err = uc.settlementRepo.GetByIDForUpdate(ctx, tx, settlementID)
		if err != nil {
			return err
		}
		if settlement.Status == domain.SettlementPaid {
			return nil
		}
		if settlement.Status == domain.SettlementVoided {
			return domain.ErrSettlementVoided
		}
		if !settlement.Status.CanTransition(domain.SettlementPaid) {
			return domain.ErrInvalidTransition
		}

		now := time.Now().UTC()
		for _, shareID := range settlement.ShareIDs {
			share, err := uc.shareRepo.GetByIDForUpdate(ctx, tx, shareID)
			if err != nil {
				return err
			}
			if share.Paid {
				// Paid outside this settlement; clearing it again would
				// erase the same debt twice.
				return domain.ErrShareSettled
			}
			if err := uc.shareRepo.MarkPaid(ctx, tx, shareID, &settlementID, now); err != nil {
				return err
			}
		}

		if err := uc.settlementRepo.UpdateStatus(ctx, tx, settlementID, domain.SettlementPaid, now, &now); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		settlement.Status = domain.SettlementPaid
		settlement.UpdatedAt = now
		settlement.PaidAt = &now
		uc.metrics.SettlementsPaid.Inc()

		return nil
	})
	if err != nil {
		return nil, err
	}

	return settlement, uc.balances.Invalidate(ctx, settlement.GroupID)
}

// UnmarkSharePaid reverts a share to unpaid. This is an administrative
// correction for mistaken marks; shares cleared by a settlement are
// rejected with ErrShareSettled, voiding the settlement is the only way
// to reopen those.
func (uc *PaymentUseCase) UnmarkSharePaid(ctx context.Context, shareID string) (*domain.Share, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	share, err := uc.shareRepo.GetByIDForUpdate(ctx, tx, shareID)
	if err != nil {
		return nil, err
	}
	if !share.Paid {
		return share, nil
	}
	if share.SettlementID != nil {
		return nil, domain.ErrShareSettled
	}

	if err := uc.shareRepo.MarkUnpaid(ctx, tx, shareID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Warn().
		Str("share_id", shareID).
		Str("expense_id", share.ExpenseID).
		Msg("share payment reverted by admin action")

	share.Paid = false
	share.PaidAt = nil
	uc.metrics.SharesUnmarked.Inc()

	expense, err := uc.expenseRepo.GetByID(ctx, share.ExpenseID)
	if err != nil {
		return nil, err
	}

	return share, uc.balances.Invalidate(ctx, expense.GroupID)
}
