package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// GroupService defines the behavior needed by GroupHandler.
type GroupService interface {
	CreateGroup(ctx context.Context, input usecase.CreateGroupInput) (*domain.Group, error)
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	ListGroups(ctx context.Context, input usecase.ListGroupsInput) ([]*domain.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, name string) (*domain.Member, error)
	RemoveMember(ctx context.Context, groupID, memberID string) error
}

// GroupHandler handles group-related HTTP requests.
type GroupHandler struct {
	groupUC GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupUC GroupService) *GroupHandler {
	return &GroupHandler{groupUC: groupUC}
}

// Create creates a new group.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	group, err := h.groupUC.CreateGroup(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create group", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.GroupFromDomain(group))
}

// Get retrieves a group by ID.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	group, err := h.groupUC.GetGroup(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get group", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GroupFromDomain(group))
}

// List lists groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	groups, err := h.groupUC.ListGroups(r.Context(), usecase.ListGroupsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list groups", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListGroupsResponse{
		Groups: dto.GroupsFromDomain(groups),
		Total:  int64(len(groups)),
	})
}

// Delete removes a group.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.groupUC.DeleteGroup(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete group", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember adds a member to a group.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req dto.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	member, err := h.groupUC.AddMember(r.Context(), groupID, req.Name)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add member", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MemberFromDomain(member))
}

// RemoveMember removes a member from a group.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	if err := h.groupUC.RemoveMember(r.Context(), groupID, memberID); err != nil {
		writeError(w, mapDomainError(err), "failed to remove member", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
