package session

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
	repo     Repository
	bus      *events.EventBus
	logger   *slog.Logger
	duration time.Duration
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger, duration time.Duration) *Service {
	if duration <= 0 {
		duration = 60 * time.Minute
	}
	return &Service{
		repo:     repo,
		bus:      bus,
		logger:   logger,
		duration: duration,
	}
}

func (s *Service) Create(ctx context.Context, userID, userName, userAgent, ipAddress string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		UserName:   userName,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(s.duration),
		IsActive:   true,
	}

	if err := s.repo.Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.publishActivity(ctx, userID, userName, "login", sess.ID,
		fmt.Sprintf("User logged in from %s", ipAddress))
	return sess, nil
}

func (s *Service) GetByID(id string) (*Session, error) {
	s.cleanupExpired()
	return s.repo.GetByID(id)
}

// GetActive returns the session only when it is both active and unexpired.
func (s *Service) GetActive(id string) (*Session, error) {
	sess, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive || sess.Expired(time.Now()) {
		return nil, internal.ErrSessionInactive
	}
	return sess, nil
}

// Touch refreshes the last-activity timestamp. It never moves CreatedAt and
// calling it twice in a row is harmless.
func (s *Service) Touch(id string) (*Session, error) {
	sess, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, internal.ErrSessionInactive
	}

	sess.LastActive = time.Now()
	if err := s.repo.Update(sess); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return sess, nil
}

// Extend pushes the expiry out by the given duration and counts as
// activity.
func (s *Service) Extend(id string, additional time.Duration) (*Session, error) {
	if additional <= 0 {
		additional = s.duration
	}

	sess, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, internal.ErrSessionInactive
	}

	sess.ExpiresAt = sess.ExpiresAt.Add(additional)
	sess.LastActive = time.Now()
	if err := s.repo.Update(sess); err != nil {
		return nil, fmt.Errorf("extend session: %w", err)
	}
	return sess, nil
}

func (s *Service) Terminate(ctx context.Context, id string, actor *internal.Actor) (*Session, error) {
	sess, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	sess.IsActive = false
	if err := s.repo.Update(sess); err != nil {
		return nil, fmt.Errorf("terminate session: %w", err)
	}

	actorID, actorName := actorIdentity(actor)
	s.publishActivity(ctx, actorID, actorName, "logout", sess.ID,
		fmt.Sprintf("Session terminated for user %s", sess.UserName))
	return sess, nil
}

// TerminateAllForUser deactivates every active session of the user, except
// an optional excluded one. Each termination is logged individually so
// every one stays independently attributable.
func (s *Service) TerminateAllForUser(ctx context.Context, userID string, actor *internal.Actor, excludeID string) (int, error) {
	sessions, _, err := s.repo.List(ListFilter{UserID: userID, ActiveOnly: true}, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	actorID, actorName := actorIdentity(actor)
	count := 0
	for _, sess := range sessions {
		if excludeID != "" && sess.ID == excludeID {
			continue
		}
		sess.IsActive = false
		if err := s.repo.Update(sess); err != nil {
			return count, fmt.Errorf("terminate session %s: %w", sess.ID, err)
		}
		count++
		s.publishActivity(ctx, actorID, actorName, "logout", sess.ID,
			fmt.Sprintf("Session terminated for user %s", sess.UserName))
	}
	return count, nil
}

// TerminateOthers ends every session of the user except the current one.
func (s *Service) TerminateOthers(ctx context.Context, userID, currentSessionID string, actor *internal.Actor) (int, error) {
	return s.TerminateAllForUser(ctx, userID, actor, currentSessionID)
}

// List returns sessions with the caller's own session flagged as current.
func (s *Service) List(filter ListFilter, pagination internal.Pagination, currentSessionID string) ([]*SessionView, int64, error) {
	s.cleanupExpired()

	limit := 0
	if pagination.Enabled() {
		limit = pagination.Limit
	}
	sessions, total, err := s.repo.List(filter, pagination.Offset(), limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*SessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, &SessionView{
			Session: *sess,
			Current: sess.ID == currentSessionID,
		})
	}
	return views, total, nil
}

// cleanupExpired lazily flips expired sessions to inactive before reads,
// mirroring how listings always reflect expiry without a background timer.
func (s *Service) cleanupExpired() {
	if n, err := s.repo.DeactivateExpired(time.Now()); err != nil {
		s.logger.Error("failed to deactivate expired sessions", "error", err)
	} else if n > 0 {
		s.logger.Debug("deactivated expired sessions", "count", n)
	}
}

func actorIdentity(actor *internal.Actor) (string, string) {
	if actor == nil {
		return "", ""
	}
	return actor.ID, actor.Name
}

func (s *Service) publishActivity(ctx context.Context, userID, userName, action, sessionID, details string) {
	if s.bus == nil {
		return
	}
	err := s.bus.PublishSync(ctx, events.NewActivityEvent(events.ActivityPayload{
		UserID:     userID,
		UserName:   userName,
		Action:     action,
		Resource:   "session",
		ResourceID: sessionID,
		Details:    details,
	}))
	if err != nil {
		s.logger.Error("failed to publish session activity", "error", err)
	}
}
