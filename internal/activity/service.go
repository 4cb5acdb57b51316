package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RegisterEventHandlers subscribes the logger to the audit event stream.
// Services never call Log directly; they publish admin.activity events and
// the subscription funnels every mutation through here.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.TypeAdminActivity, s.handleActivityEvent)
}

func (s *Service) handleActivityEvent(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(events.ActivityPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for event %s", event.EventID())
	}

	entry := &Entry{
		ID:         event.EventID(),
		UserID:     payload.UserID,
		UserName:   payload.UserName,
		Action:     payload.Action,
		Resource:   payload.Resource,
		ResourceID: payload.ResourceID,
		Details:    payload.Details,
		Timestamp:  event.OccurredAt(),
		IPAddress:  payload.IPAddress,
		UserAgent:  payload.UserAgent,
	}
	return s.repo.Insert(entry)
}

// Log writes an entry outside the event bus. Used for actions that have no
// publishing service, such as denied login attempts.
func (s *Service) Log(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.repo.Insert(entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to write activity entry",
			"action", entry.Action,
			"resource", entry.Resource,
			"error", err)
		return err
	}
	return nil
}

// Query returns entries newest first. The filter is applied before
// pagination; total is the count of all matching entries.
func (s *Service) Query(ctx context.Context, dto QueryDTO) ([]*Entry, int64, error) {
	if err := dto.Validate(); err != nil {
		return nil, 0, err
	}
	filter := Filter{
		UserID:    dto.UserID,
		Action:    dto.Action,
		Resource:  dto.Resource,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
	}
	return s.repo.List(filter, dto.Pagination.Offset(), dto.Pagination.Limit)
}

// Clear wipes the whole log. Entries are immutable so this and Query are the
// only operations exposed after a write.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	removed, err := s.repo.Clear()
	if err != nil {
		return 0, err
	}

	actorID := ""
	if actor, ok := internal.ActorFromContext(ctx); ok {
		actorID = actor.ID
	}
	s.logger.InfoContext(ctx, "activity log cleared",
		"removed", removed,
		"actor_id", actorID)

	return removed, nil
}
