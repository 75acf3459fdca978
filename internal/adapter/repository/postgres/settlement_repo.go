package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// Create inserts a settlement and its share links inside the caller's
// transaction.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	pgxTx := tx.(*Tx).PgxTx()

	var paidAt pgtype.Timestamptz
	if settlement.PaidAt != nil {
		paidAt = timeToPgTimestamptz(*settlement.PaidAt)
	}

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO settlements (id, group_id, payer_id, payee_id, amount, status, notes, created_at, updated_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, settlement.ID, settlement.GroupID, settlement.PayerID, settlement.PayeeID,
		decimalToNumeric(settlement.Amount), string(settlement.Status), settlement.Notes,
		timeToPgTimestamptz(settlement.CreatedAt), timeToPgTimestamptz(settlement.UpdatedAt), paidAt)
	if err != nil {
		return mapError(err, domain.ErrSettlementNotFound)
	}

	for _, shareID := range settlement.ShareIDs {
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO settlement_shares (settlement_id, share_id)
			VALUES ($1, $2)
		`, settlement.ID, shareID)
		if err != nil {
			return mapError(err, domain.ErrSettlementNotFound)
		}
	}

	return nil
}

// GetByID retrieves a settlement with its share links.
func (r *SettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	settlement, err := scanSettlement(r.pool.QueryRow(ctx, `
		SELECT id, group_id, payer_id, payee_id, amount, status, notes, created_at, updated_at, paid_at
		FROM settlements
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	shareIDs, err := r.shareIDs(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	settlement.ShareIDs = shareIDs

	return settlement, nil
}

// GetByIDForUpdate retrieves a settlement with a FOR UPDATE lock.
func (r *SettlementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Settlement, error) {
	pgxTx := tx.(*Tx).PgxTx()

	settlement, err := scanSettlement(pgxTx.QueryRow(ctx, `
		SELECT id, group_id, payer_id, payee_id, amount, status, notes, created_at, updated_at, paid_at
		FROM settlements
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return nil, err
	}

	shareIDs, err := r.shareIDs(ctx, pgxTx, id)
	if err != nil {
		return nil, err
	}
	settlement.ShareIDs = shareIDs

	return settlement, nil
}

// ListByGroup lists a group's settlements, newest first.
func (r *SettlementRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, payer_id, payee_id, amount, status, notes, created_at, updated_at, paid_at
		FROM settlements
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
	`, groupID)
	if err != nil {
		return nil, mapError(err, domain.ErrSettlementNotFound)
	}
	defer rows.Close()

	settlements := make([]*domain.Settlement, 0)
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrSettlementNotFound)
	}

	for _, s := range settlements {
		shareIDs, err := r.shareIDs(ctx, r.pool, s.ID)
		if err != nil {
			return nil, err
		}
		s.ShareIDs = shareIDs
	}

	return settlements, nil
}

// UpdateStatus moves a settlement to a new lifecycle state.
func (r *SettlementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SettlementStatus, updatedAt time.Time, paidAt *time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE settlements
		SET status = $2, updated_at = $3, paid_at = $4
		WHERE id = $1
	`, id, string(status), timeToPgTimestamptz(updatedAt), timePtrToPgTimestamptz(paidAt))
	if err != nil {
		return mapError(err, domain.ErrSettlementNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSettlementNotFound
	}

	return nil
}

// DiscardSuggested discards every suggested settlement in a group. Ran
// before a new plan is written so stale suggestions never accumulate.
func (r *SettlementRepository) DiscardSuggested(ctx context.Context, tx usecase.Transaction, groupID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE settlements
		SET status = $3, updated_at = $2
		WHERE group_id = $1 AND status = $4
	`, groupID, timeToPgTimestamptz(updatedAt),
		string(domain.SettlementDiscarded), string(domain.SettlementSuggested))

	return mapError(err, domain.ErrSettlementNotFound)
}

// querier covers both pool and transaction for read helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *SettlementRepository) shareIDs(ctx context.Context, q querier, settlementID string) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT share_id
		FROM settlement_shares
		WHERE settlement_id = $1
		ORDER BY share_id
	`, settlementID)
	if err != nil {
		return nil, mapError(err, domain.ErrSettlementNotFound)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanSettlement(row pgx.Row) (*domain.Settlement, error) {
	settlement := &domain.Settlement{}
	var amount pgtype.Numeric
	var status string
	var createdAt, updatedAt, paidAt pgtype.Timestamptz

	err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.PayerID, &settlement.PayeeID,
		&amount, &status, &settlement.Notes, &createdAt, &updatedAt, &paidAt)
	if err != nil {
		return nil, mapError(err, domain.ErrSettlementNotFound)
	}

	settlement.Amount = numericToDecimal(amount)
	settlement.Status = domain.SettlementStatus(status)
	settlement.CreatedAt = createdAt.Time
	settlement.UpdatedAt = updatedAt.Time
	settlement.PaidAt = pgTimestamptzToTimePtr(paidAt)

	return settlement, nil
}
