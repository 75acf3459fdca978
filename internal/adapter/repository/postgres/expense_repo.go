package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// CreateWithShares inserts an expense and all its shares inside the
// caller's transaction.
func (r *ExpenseRepository) CreateWithShares(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO expenses (id, group_id, payer_id, amount, method, description, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, expense.ID, expense.GroupID, expense.PayerID,
		decimalToNumeric(expense.Amount), string(expense.Method),
		expense.Description, timeToPgTimestamptz(expense.Date),
		timeToPgTimestamptz(expense.CreatedAt), timeToPgTimestamptz(expense.UpdatedAt))
	if err != nil {
		return mapError(err, domain.ErrExpenseNotFound)
	}

	return r.insertShares(ctx, pgxTx, expense.Shares)
}

// GetByID retrieves an expense with its shares.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	expense, err := r.scanExpense(r.pool.QueryRow(ctx, `
		SELECT id, group_id, payer_id, amount, method, description, date, created_at, updated_at
		FROM expenses
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	shares, err := r.sharesByExpenses(ctx, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Shares = shares[expense.ID]

	return expense, nil
}

// ListByGroup lists a group's expenses with their shares, newest first.
func (r *ExpenseRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, payer_id, amount, method, description, date, created_at, updated_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY date DESC, id DESC
	`, groupID)
	if err != nil {
		return nil, mapError(err, domain.ErrExpenseNotFound)
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	ids := make([]string, 0)
	for rows.Next() {
		expense, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrExpenseNotFound)
	}

	if len(ids) == 0 {
		return expenses, nil
	}

	shares, err := r.sharesByExpenses(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Shares = shares[e.ID]
	}

	return expenses, nil
}

// Update rewrites an expense and replaces its shares inside the
// caller's transaction.
func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE expenses
		SET amount = $2, method = $3, description = $4, date = $5, updated_at = $6
		WHERE id = $1
	`, expense.ID, decimalToNumeric(expense.Amount), string(expense.Method),
		expense.Description, timeToPgTimestamptz(expense.Date),
		timeToPgTimestamptz(expense.UpdatedAt))
	if err != nil {
		return mapError(err, domain.ErrExpenseNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	_, err = pgxTx.Exec(ctx, `DELETE FROM shares WHERE expense_id = $1`, expense.ID)
	if err != nil {
		return mapError(err, domain.ErrExpenseNotFound)
	}

	return r.insertShares(ctx, pgxTx, expense.Shares)
}

// Delete removes an expense and its shares inside the caller's
// transaction.
func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return mapError(err, domain.ErrExpenseNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// HasPaidShares reports whether any of the expense's shares is paid.
// The shares are locked inside the caller's transaction so a concurrent
// payment cannot land between this check and a rewrite or delete.
func (r *ExpenseRepository) HasPaidShares(ctx context.Context, tx usecase.Transaction, expenseID string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, `
		SELECT paid FROM shares WHERE expense_id = $1 FOR UPDATE
	`, expenseID)
	if err != nil {
		return false, mapError(err, domain.ErrExpenseNotFound)
	}
	defer rows.Close()

	hasPaid := false
	for rows.Next() {
		var paid bool
		if err := rows.Scan(&paid); err != nil {
			return false, mapError(err, domain.ErrExpenseNotFound)
		}
		if paid {
			hasPaid = true
		}
	}

	return hasPaid, rows.Err()
}

func (r *ExpenseRepository) insertShares(ctx context.Context, pgxTx pgx.Tx, shares []*domain.Share) error {
	for _, s := range shares {
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO shares (id, expense_id, member_id, amount, paid, settlement_id, created_at, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, s.ID, s.ExpenseID, s.MemberID, decimalToNumeric(s.Amount),
			s.Paid, textPtr(s.SettlementID),
			timeToPgTimestamptz(s.CreatedAt), timePtrToPgTimestamptz(s.PaidAt))
		if err != nil {
			return mapError(err, domain.ErrShareNotFound)
		}
	}

	return nil
}

func (r *ExpenseRepository) scanExpense(row pgx.Row) (*domain.Expense, error) {
	expense := &domain.Expense{}
	var amount pgtype.Numeric
	var method string
	var date, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&expense.ID, &expense.GroupID, &expense.PayerID,
		&amount, &method, &expense.Description, &date, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapError(err, domain.ErrExpenseNotFound)
	}

	expense.Amount = numericToDecimal(amount)
	expense.Method = domain.SplitMethod(method)
	expense.Date = date.Time
	expense.CreatedAt = createdAt.Time
	expense.UpdatedAt = updatedAt.Time

	return expense, nil
}

func (r *ExpenseRepository) sharesByExpenses(ctx context.Context, expenseIDs []string) (map[string][]*domain.Share, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, expense_id, member_id, amount, paid, settlement_id, created_at, paid_at
		FROM shares
		WHERE expense_id = ANY($1)
		ORDER BY member_id
	`, expenseIDs)
	if err != nil {
		return nil, mapError(err, domain.ErrShareNotFound)
	}
	defer rows.Close()

	byExpense := make(map[string][]*domain.Share)
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		byExpense[share.ExpenseID] = append(byExpense[share.ExpenseID], share)
	}

	return byExpense, rows.Err()
}

func scanShare(row pgx.Row) (*domain.Share, error) {
	share := &domain.Share{}
	var amount pgtype.Numeric
	var settlementID pgtype.Text
	var createdAt, paidAt pgtype.Timestamptz

	err := row.Scan(&share.ID, &share.ExpenseID, &share.MemberID,
		&amount, &share.Paid, &settlementID, &createdAt, &paidAt)
	if err != nil {
		return nil, mapError(err, domain.ErrShareNotFound)
	}

	share.Amount = numericToDecimal(amount)
	share.SettlementID = pgTextToStringPtr(settlementID)
	share.CreatedAt = createdAt.Time
	share.PaidAt = pgTimestamptzToTimePtr(paidAt)

	return share, nil
}
