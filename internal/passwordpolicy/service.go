package passwordpolicy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/commercemobile/storefront-admin/internal/core/events"
	"golang.org/x/crypto/bcrypt"
)

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

type Service struct {
	mu       sync.RWMutex
	policy   Policy
	defaults Policy
	history  HistoryStore
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(defaults Policy, history HistoryStore, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		policy:   defaults,
		defaults: defaults,
		history:  history,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) Get() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// Update merges the provided fields into the current policy. Nil fields are
// left untouched, matching partial updates from the settings form.
func (s *Service) Update(ctx context.Context, dto UpdatePolicyDTO, actorID, actorName string) (Policy, error) {
	if err := dto.Validate(); err != nil {
		return Policy{}, err
	}

	s.mu.Lock()
	if dto.MinLength != nil {
		s.policy.MinLength = *dto.MinLength
	}
	if dto.RequireUppercase != nil {
		s.policy.RequireUppercase = *dto.RequireUppercase
	}
	if dto.RequireLowercase != nil {
		s.policy.RequireLowercase = *dto.RequireLowercase
	}
	if dto.RequireNumbers != nil {
		s.policy.RequireNumbers = *dto.RequireNumbers
	}
	if dto.RequireSpecialChars != nil {
		s.policy.RequireSpecialChars = *dto.RequireSpecialChars
	}
	if dto.ExpiryDays != nil {
		s.policy.ExpiryDays = *dto.ExpiryDays
	}
	if dto.PreventReuse != nil {
		s.policy.PreventReuse = *dto.PreventReuse
	}
	updated := s.policy
	s.mu.Unlock()

	s.publishActivity(ctx, actorID, actorName, "Updated password policy")
	return updated, nil
}

func (s *Service) Reset(ctx context.Context, actorID, actorName string) Policy {
	s.mu.Lock()
	s.policy = s.defaults
	reset := s.policy
	s.mu.Unlock()

	s.publishActivity(ctx, actorID, actorName, "Reset password policy to default")
	return reset
}

// Validate checks the password against every rule and reports all
// violations.
func (s *Service) Validate(password string) ValidationResult {
	policy := s.Get()

	var errs []string
	if len(password) < policy.MinLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long", policy.MinLength))
	}
	if policy.RequireUppercase && !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if policy.RequireLowercase && !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if policy.RequireNumbers && !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		errs = append(errs, "Password must contain at least one number")
	}
	if policy.RequireSpecialChars && !strings.ContainsAny(password, specialChars) {
		errs = append(errs, "Password must contain at least one special character")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// AddToHistory records a password hash for the reuse check, trimmed to the
// policy's prevent_reuse window.
func (s *Service) AddToHistory(userID, passwordHash string) error {
	return s.history.Add(userID, passwordHash, s.Get().PreventReuse)
}

// IsInHistory reports whether the plaintext password matches any of the
// user's recent password hashes.
func (s *Service) IsInHistory(userID, password string) (bool, error) {
	if s.Get().PreventReuse <= 0 {
		return false, nil
	}
	hashes, err := s.history.Hashes(userID)
	if err != nil {
		return false, err
	}
	for _, hash := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) publishActivity(ctx context.Context, actorID, actorName, details string) {
	if s.bus == nil {
		return
	}
	err := s.bus.PublishSync(ctx, events.NewActivityEvent(events.ActivityPayload{
		UserID:   actorID,
		UserName: actorName,
		Action:   "update",
		Resource: "password_policy",
		Details:  details,
	}))
	if err != nil {
		s.logger.Error("failed to publish policy activity", "error", err)
	}
}
