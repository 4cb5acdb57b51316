package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/commercemobile/storefront-admin/internal/ipaccess"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	"github.com/commercemobile/storefront-admin/internal/permission"
	"github.com/commercemobile/storefront-admin/internal/session"
	"github.com/google/uuid"
)

// challenge is a pending second-factor prompt. The user has proven their
// password but holds no session until the code verifies.
type challenge struct {
	userID    string
	userAgent string
	ipAddress string
	expiresAt time.Time
}

// Service drives the login state machine: credentials, then the password
// expiry gate, then the optional second factor, and only then a session.
type Service struct {
	users     adminuser.ServiceAPI
	sessions  *session.Service
	resolver  *permission.Resolver
	tokens    *TokenManager
	twoFactor TwoFactorVerifier
	ipAccess  *ipaccess.Service
	bus       *events.EventBus
	logger    *slog.Logger

	challengeTTL time.Duration
	mu           sync.Mutex
	challenges   map[string]challenge
}

func NewService(
	users adminuser.ServiceAPI,
	sessions *session.Service,
	resolver *permission.Resolver,
	tokens *TokenManager,
	twoFactor TwoFactorVerifier,
	ipAccess *ipaccess.Service,
	bus *events.EventBus,
	logger *slog.Logger,
	challengeTTL time.Duration,
) *Service {
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	return &Service{
		users:        users,
		sessions:     sessions,
		resolver:     resolver,
		tokens:       tokens,
		twoFactor:    twoFactor,
		ipAccess:     ipAccess,
		bus:          bus,
		logger:       logger,
		challengeTTL: challengeTTL,
		challenges:   make(map[string]challenge),
	}
}

// Login runs the first phase of the state machine. It returns one of three
// states: password_expired (no session), two_factor_pending (challenge token,
// no session), or authenticated (session plus signed token).
func (s *Service) Login(ctx context.Context, dto LoginDTO, userAgent, ipAddress string) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if s.ipAccess != nil && !s.ipAccess.IsAllowed(ipAddress) {
		s.logger.WarnContext(ctx, "login blocked by IP restrictions",
			"email", dto.Email,
			"ip_address", ipAddress)
		s.publishLoginFailure(ctx, dto.Email, ipAddress, userAgent, "Login blocked by IP restrictions")
		return nil, internal.ErrIPNotAllowed
	}

	user, err := s.users.VerifyCredentials(dto.Email, dto.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", "email", dto.Email, "ip_address", ipAddress)
		s.publishLoginFailure(ctx, dto.Email, ipAddress, userAgent, "Invalid credentials")
		return nil, internal.ErrInvalidCredentials
	}

	if passwordpolicy.IsExpired(user.PasswordExpires) {
		return &LoginResult{
			State: StatePasswordExpired,
			User:  user,
		}, nil
	}

	if user.TwoFactorEnabled {
		token := s.createChallenge(user.ID, userAgent, ipAddress)
		return &LoginResult{
			State:          StateTwoFactorPending,
			ChallengeToken: token,
		}, nil
	}

	return s.completeLogin(ctx, user, userAgent, ipAddress)
}

// VerifyTwoFactor completes a pending challenge. A wrong code leaves the
// challenge in place for a retry until its TTL runs out.
func (s *Service) VerifyTwoFactor(ctx context.Context, dto VerifyTwoFactorDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ch, ok := s.lookupChallenge(dto.ChallengeToken)
	if !ok {
		return nil, internal.NewUnauthorizedError("Two-factor challenge expired or unknown", internal.ErrCodeTwoFactorFailed)
	}

	if !s.twoFactor.Verify(ch.userID, dto.Code) {
		return nil, internal.ErrTwoFactorFailed
	}
	s.consumeChallenge(dto.ChallengeToken)

	user, err := s.users.GetByID(ch.userID)
	if err != nil {
		return nil, err
	}
	return s.completeLogin(ctx, user, ch.userAgent, ch.ipAddress)
}

func (s *Service) completeLogin(ctx context.Context, user *adminuser.AdminUser, userAgent, ipAddress string) (*LoginResult, error) {
	sess, err := s.sessions.Create(ctx, user.ID, user.Name, userAgent, ipAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to stamp last login", "user_id", user.ID, "error", err)
	}

	perms, err := s.resolver.EffectivePermissions(user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(sess.ID, user.ID, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "admin authenticated",
		"user_id", user.ID,
		"session_id", sess.ID,
		"ip_address", ipAddress)

	return &LoginResult{
		State:       StateAuthenticated,
		User:        user,
		Session:     sess,
		Token:       token,
		Permissions: perms,
	}, nil
}

// Resume validates a bearer token and reloads the authenticated state. Used
// by the auth middleware and the /me endpoint.
func (s *Service) Resume(ctx context.Context, tokenString string) (*LoginResult, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.GetActive(claims.SessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(sess.UserID)
	if err != nil {
		return nil, err
	}

	perms, err := s.resolver.EffectivePermissions(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		State:       StateAuthenticated,
		User:        user,
		Session:     sess,
		Permissions: perms,
	}, nil
}

// Heartbeat keeps a session's last-activity fresh.
func (s *Service) Heartbeat(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.sessions.Touch(sessionID)
}

func (s *Service) Logout(ctx context.Context, actor *internal.Actor) error {
	if actor == nil || actor.SessionID == "" {
		return internal.ErrSessionNotFound
	}
	_, err := s.sessions.Terminate(ctx, actor.SessionID, actor)
	return err
}

func (s *Service) createChallenge(userID, userAgent, ipAddress string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for t, ch := range s.challenges {
		if now.After(ch.expiresAt) {
			delete(s.challenges, t)
		}
	}
	s.challenges[token] = challenge{
		userID:    userID,
		userAgent: userAgent,
		ipAddress: ipAddress,
		expiresAt: now.Add(s.challengeTTL),
	}
	return token
}

func (s *Service) lookupChallenge(token string) (challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[token]
	if !ok {
		return challenge{}, false
	}
	if time.Now().After(ch.expiresAt) {
		delete(s.challenges, token)
		return challenge{}, false
	}
	return ch, true
}

func (s *Service) consumeChallenge(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, token)
}

func (s *Service) publishLoginFailure(ctx context.Context, email, ipAddress, userAgent, details string) {
	if s.bus == nil {
		return
	}
	err := s.bus.PublishSync(ctx, events.NewActivityEvent(events.ActivityPayload{
		UserName:  email,
		Action:    "login_failed",
		Resource:  "admin_panel",
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish login failure", "error", err)
	}
}
