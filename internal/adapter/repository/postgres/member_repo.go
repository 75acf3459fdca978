package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
)

// MemberRepository implements usecase.MemberRepository.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// Create adds a member to a group.
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO members (id, group_id, name, joined_at)
		VALUES ($1, $2, $3, $4)
	`, member.ID, member.GroupID, member.Name, timeToPgTimestamptz(member.JoinedAt))

	return mapError(err, domain.ErrMemberNotFound)
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	m := &domain.Member{}
	var joinedAt pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, `
		SELECT id, group_id, name, joined_at
		FROM members
		WHERE id = $1
	`, id).Scan(&m.ID, &m.GroupID, &m.Name, &joinedAt)
	if err != nil {
		return nil, mapError(err, domain.ErrMemberNotFound)
	}

	m.JoinedAt = joinedAt.Time

	return m, nil
}

// Delete removes a member.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return mapError(err, domain.ErrMemberNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// HasShares reports whether any share, paid or not, references the
// member as debtor or whether the member paid any expense.
func (r *MemberRepository) HasShares(ctx context.Context, memberID string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM shares WHERE member_id = $1
			UNION ALL
			SELECT 1 FROM expenses WHERE payer_id = $1
		)
	`, memberID).Scan(&exists)
	if err != nil {
		return false, mapError(err, domain.ErrMemberNotFound)
	}

	return exists, nil
}
