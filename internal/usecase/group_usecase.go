package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// GroupUseCase handles group and membership business logic.
type GroupUseCase struct {
	groupRepo  GroupRepository
	memberRepo MemberRepository
	balances   *BalanceUseCase
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewGroupUseCase creates a new GroupUseCase.
func NewGroupUseCase(
	groupRepo GroupRepository,
	memberRepo MemberRepository,
	balances *BalanceUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
) *GroupUseCase {
	return &GroupUseCase{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		balances:   balances,
		idGen:      idGen,
		metrics:    m,
	}
}

// CreateGroupInput represents input for creating a group.
type CreateGroupInput struct {
	Name        string
	Currency    string
	MemberNames []string
}

// CreateGroup creates a group together with its initial members.
func (uc *GroupUseCase) CreateGroup(ctx context.Context, input CreateGroupInput) (*domain.Group, error) {
	now := time.Now().UTC()

	group := &domain.Group{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	for _, name := range input.MemberNames {
		if err := domain.ValidateMemberName(name); err != nil {
			return nil, err
		}
		group.Members = append(group.Members, &domain.Member{
			ID:       uc.idGen.Generate(),
			GroupID:  group.ID,
			Name:     strings.TrimSpace(name),
			JoinedAt: now,
		})
	}

	if err := uc.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	uc.metrics.GroupsCreated.Inc()

	return group, nil
}

// GetGroup retrieves a group with its members.
func (uc *GroupUseCase) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	return uc.groupRepo.GetByID(ctx, id)
}

// ListGroupsInput represents input for listing groups.
type ListGroupsInput struct {
	Limit  int
	Offset int
}

// ListGroups lists groups with pagination.
func (uc *GroupUseCase) ListGroups(ctx context.Context, input ListGroupsInput) ([]*domain.Group, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.groupRepo.List(ctx, limit, offset)
}

// DeleteGroup deletes a group and everything it owns.
func (uc *GroupUseCase) DeleteGroup(ctx context.Context, id string) error {
	if _, err := uc.groupRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := uc.groupRepo.Delete(ctx, id); err != nil {
		return err
	}

	return uc.balances.Invalidate(ctx, id)
}

// AddMember adds a member to an existing group.
func (uc *GroupUseCase) AddMember(ctx context.Context, groupID, name string) (*domain.Member, error) {
	if err := domain.ValidateMemberName(name); err != nil {
		return nil, err
	}

	if _, err := uc.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	member := &domain.Member{
		ID:       uc.idGen.Generate(),
		GroupID:  groupID,
		Name:     strings.TrimSpace(name),
		JoinedAt: time.Now().UTC(),
	}

	if err := uc.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	// A new member starts at zero balance, but the cached vector no
	// longer covers every member.
	if err := uc.balances.Invalidate(ctx, groupID); err != nil {
		return nil, err
	}

	return member, nil
}

// RemoveMember removes a member from a group. Members holding a
// non-zero balance, or referenced by any expense share, cannot be
// removed.
func (uc *GroupUseCase) RemoveMember(ctx context.Context, groupID, memberID string) error {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(memberID) {
		return domain.ErrMemberNotFound
	}

	balances, err := uc.balances.ComputeBalances(ctx, groupID)
	if err != nil {
		return err
	}
	for _, b := range balances {
		if b.MemberID == memberID && !b.Amount.IsZero() {
			return domain.ErrMemberHasBalance
		}
	}

	hasShares, err := uc.memberRepo.HasShares(ctx, memberID)
	if err != nil {
		return err
	}
	if hasShares {
		return domain.ErrMemberHasShares
	}

	if err := uc.memberRepo.Delete(ctx, memberID); err != nil {
		return err
	}

	return uc.balances.Invalidate(ctx, groupID)
}
