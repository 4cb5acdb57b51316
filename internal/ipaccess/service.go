package ipaccess

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"
	"sync"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/events"
)

// Service holds the global restriction settings in memory. The settings are
// deliberately process-local and reset on restart, matching the rest of the
// security configuration surface.
type Service struct {
	mu       sync.RWMutex
	settings Settings
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		settings: Settings{
			Enabled: false,
			Mode:    ModeDenylist,
			Rules:   []Rule{},
		},
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) Get(ctx context.Context) Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Update replaces enabled/mode. Rules are managed through AddRule/RemoveRule.
func (s *Service) Update(ctx context.Context, dto UpdateSettingsDTO) (Settings, error) {
	if err := dto.Validate(); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	if dto.Enabled != nil {
		s.settings.Enabled = *dto.Enabled
	}
	if dto.Mode != nil {
		s.settings.Mode = *dto.Mode
	}
	updated := s.snapshot()
	s.mu.Unlock()

	s.publishActivity(ctx, "update", "IP restriction settings updated")
	return updated, nil
}

func (s *Service) AddRule(ctx context.Context, dto RuleDTO) (Settings, error) {
	if err := dto.Validate(); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	exists := false
	for _, r := range s.settings.Rules {
		if r.Value == dto.Value {
			exists = true
			break
		}
	}
	if !exists {
		s.settings.Rules = append(s.settings.Rules, Rule{
			Value:       dto.Value,
			Description: dto.Description,
		})
	}
	updated := s.snapshot()
	s.mu.Unlock()

	if !exists {
		s.publishActivity(ctx, "create", "IP rule added: "+dto.Value)
	}
	return updated, nil
}

func (s *Service) RemoveRule(ctx context.Context, value string) (Settings, error) {
	s.mu.Lock()
	removed := false
	rules := s.settings.Rules[:0]
	for _, r := range s.settings.Rules {
		if r.Value == value {
			removed = true
			continue
		}
		rules = append(rules, r)
	}
	s.settings.Rules = rules
	updated := s.snapshot()
	s.mu.Unlock()

	if !removed {
		return Settings{}, internal.NewNotFoundError("IP rule not found: "+value, internal.ErrCodeInvalidIP)
	}
	s.publishActivity(ctx, "delete", "IP rule removed: "+value)
	return updated, nil
}

// IsAllowed evaluates an address against the current settings. Disabled
// restrictions and unparsable addresses admit the caller; login is the
// enforcement point and should not lock every admin out over a proxy quirk.
func (s *Service) IsAllowed(ip string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.settings.Enabled {
		return true
	}

	host := ip
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host, "]") && strings.Count(host, ":") == 1 {
		host = host[:i]
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return true
	}

	matched := false
	for _, r := range s.settings.Rules {
		if ruleMatches(r.Value, addr) {
			matched = true
			break
		}
	}

	if s.settings.Mode == ModeAllowlist {
		return matched
	}
	return !matched
}

func (s *Service) snapshot() Settings {
	out := s.settings
	out.Rules = make([]Rule, len(s.settings.Rules))
	copy(out.Rules, s.settings.Rules)
	return out
}

func (s *Service) publishActivity(ctx context.Context, action, details string) {
	if s.bus == nil {
		return
	}
	payload := events.ActivityPayload{
		Action:   action,
		Resource: "ip_restrictions",
		Details:  details,
	}
	if actor, ok := internal.ActorFromContext(ctx); ok {
		payload.UserID = actor.ID
		payload.UserName = actor.Name
	}
	if err := s.bus.PublishSync(ctx, events.NewActivityEvent(payload)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish activity event",
			"action", action,
			"error", err)
	}
}
