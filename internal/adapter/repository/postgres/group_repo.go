package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
)

// GroupRepository implements usecase.GroupRepository.
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// Create creates a group and its initial members in one transaction.
func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError(err, domain.ErrGroupNotFound)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO groups (id, name, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, group.ID, group.Name, group.Currency,
		timeToPgTimestamptz(group.CreatedAt), timeToPgTimestamptz(group.UpdatedAt))
	if err != nil {
		return mapError(err, domain.ErrGroupNotFound)
	}

	for _, m := range group.Members {
		_, err = tx.Exec(ctx, `
			INSERT INTO members (id, group_id, name, joined_at)
			VALUES ($1, $2, $3, $4)
		`, m.ID, m.GroupID, m.Name, timeToPgTimestamptz(m.JoinedAt))
		if err != nil {
			return mapError(err, domain.ErrGroupNotFound)
		}
	}

	return mapError(tx.Commit(ctx), domain.ErrGroupNotFound)
}

// GetByID retrieves a group with its members.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	group := &domain.Group{}
	var createdAt, updatedAt pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, currency, created_at, updated_at
		FROM groups
		WHERE id = $1
	`, id).Scan(&group.ID, &group.Name, &group.Currency, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapError(err, domain.ErrGroupNotFound)
	}

	group.CreatedAt = createdAt.Time
	group.UpdatedAt = updatedAt.Time

	members, err := r.membersByGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

// List lists groups with pagination, members included.
func (r *GroupRepository) List(ctx context.Context, limit, offset int) ([]*domain.Group, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, currency, created_at, updated_at
		FROM groups
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, mapError(err, domain.ErrGroupNotFound)
	}
	defer rows.Close()

	groups := make([]*domain.Group, 0)
	for rows.Next() {
		group := &domain.Group{}
		var createdAt, updatedAt pgtype.Timestamptz

		if err := rows.Scan(&group.ID, &group.Name, &group.Currency, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		group.CreatedAt = createdAt.Time
		group.UpdatedAt = updatedAt.Time
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, domain.ErrGroupNotFound)
	}

	for _, g := range groups {
		members, err := r.membersByGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Members = members
	}

	return groups, nil
}

// Delete removes a group. Members, expenses, shares and settlements go
// with it via ON DELETE CASCADE.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return mapError(err, domain.ErrGroupNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}

	return nil
}

func (r *GroupRepository) membersByGroup(ctx context.Context, groupID string) ([]*domain.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, name, joined_at
		FROM members
		WHERE group_id = $1
		ORDER BY id
	`, groupID)
	if err != nil {
		return nil, mapError(err, domain.ErrGroupNotFound)
	}
	defer rows.Close()

	members := make([]*domain.Member, 0)
	for rows.Next() {
		m := &domain.Member{}
		var joinedAt pgtype.Timestamptz

		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &joinedAt); err != nil {
			return nil, err
		}
		m.JoinedAt = joinedAt.Time
		members = append(members, m)
	}

	return members, rows.Err()
}
