package group

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateGroupDTO, actor *internal.Actor) (*UserGroup, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	g := &UserGroup{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		Permissions: dto.Permissions,
		Members:     dto.Members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	s.publishActivity(ctx, actor, "create", g.ID, fmt.Sprintf("Created user group: %s", g.Name))
	return g, nil
}

func (s *Service) GetByID(id string) (*UserGroup, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List() ([]*UserGroup, error) {
	return s.repo.List()
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateGroupDTO, actor *internal.Actor) (*UserGroup, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	g, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		g.Name = *dto.Name
	}
	if dto.Description != nil {
		g.Description = *dto.Description
	}
	if dto.Permissions != nil {
		g.Permissions = *dto.Permissions
	}
	g.UpdatedAt = time.Now()

	if err := s.repo.Update(g); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}

	s.publishActivity(ctx, actor, "update", g.ID, fmt.Sprintf("Updated user group: %s", g.Name))
	return g, nil
}

func (s *Service) Delete(ctx context.Context, id string, actor *internal.Actor) error {
	g, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	s.publishActivity(ctx, actor, "delete", id, fmt.Sprintf("Deleted user group: %s", g.Name))
	return nil
}

func (s *Service) AddMember(ctx context.Context, groupID, userID string, actor *internal.Actor) (*UserGroup, error) {
	g, err := s.repo.GetByID(groupID)
	if err != nil {
		return nil, err
	}

	if g.HasMember(userID) {
		return g, nil
	}

	g.Members = append(g.Members, userID)
	g.UpdatedAt = time.Now()
	if err := s.repo.Update(g); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.publishActivity(ctx, actor, "update", g.ID, fmt.Sprintf("Added user %s to group: %s", userID, g.Name))
	return g, nil
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID string, actor *internal.Actor) (*UserGroup, error) {
	g, err := s.repo.GetByID(groupID)
	if err != nil {
		return nil, err
	}

	members := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	g.Members = members
	g.UpdatedAt = time.Now()
	if err := s.repo.Update(g); err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}

	s.publishActivity(ctx, actor, "update", g.ID, fmt.Sprintf("Removed user %s from group: %s", userID, g.Name))
	return g, nil
}

// PermissionsForUser unions the permission lists of every group the user
// belongs to. The result is sorted and de-duplicated.
func (s *Service) PermissionsForUser(userID string) ([]string, error) {
	groups, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}

	set := make(map[string]struct{})
	for _, g := range groups {
		for _, p := range g.Permissions {
			set[p] = struct{}{}
		}
	}

	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms, nil
}

func (s *Service) publishActivity(ctx context.Context, actor *internal.Actor, action, resourceID, details string) {
	if s.bus == nil {
		return
	}
	payload := events.ActivityPayload{
		Action:     action,
		Resource:   "user_group",
		ResourceID: resourceID,
		Details:    details,
	}
	if actor != nil {
		payload.UserID = actor.ID
		payload.UserName = actor.Name
	}
	if err := s.bus.PublishSync(ctx, events.NewActivityEvent(payload)); err != nil {
		s.logger.Error("failed to publish group activity", "error", err)
	}
}
