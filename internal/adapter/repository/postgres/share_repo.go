package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ShareRepository implements usecase.ShareRepository.
type ShareRepository struct {
	pool *pgxpool.Pool
}

// NewShareRepository creates a new ShareRepository.
func NewShareRepository(pool *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{pool: pool}
}

const shareColumns = `id, expense_id, member_id, amount, paid, settlement_id, created_at, paid_at`

// GetByID retrieves a share by ID.
func (r *ShareRepository) GetByID(ctx context.Context, id string) (*domain.Share, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanShare(r.pool.QueryRow(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a share with a FOR UPDATE lock.
func (r *ShareRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Share, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanShare(pgxTx.QueryRow(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE id = $1 FOR UPDATE`, id))
}

// MarkPaid flips a share to paid, recording when and, for settlement
// driven payments, which settlement cleared it.
func (r *ShareRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, id string, settlementID *string, paidAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE shares
		SET paid = TRUE, settlement_id = $2, paid_at = $3
		WHERE id = $1
	`, id, textPtr(settlementID), timeToPgTimestamptz(paidAt))
	if err != nil {
		return mapError(err, domain.ErrShareNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShareNotFound
	}

	return nil
}

// MarkUnpaid reverts a share to unpaid and clears its settlement link.
func (r *ShareRepository) MarkUnpaid(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE shares
		SET paid = FALSE, settlement_id = NULL, paid_at = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err, domain.ErrShareNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShareNotFound
	}

	return nil
}
