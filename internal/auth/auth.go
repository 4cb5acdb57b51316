package auth

import (
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	"github.com/commercemobile/storefront-admin/internal/session"
)

// State is where a login attempt currently sits. Login starts anonymous and
// only StateAuthenticated carries a session.
type State string

const (
	StateAnonymous        State = "anonymous"
	StatePasswordExpired  State = "password_expired"
	StateTwoFactorPending State = "two_factor_pending"
	StateAuthenticated    State = "authenticated"
)

// LoginResult is the outcome of Login or VerifyTwoFactor. Token and Session
// are set only in StateAuthenticated; ChallengeToken only in
// StateTwoFactorPending.
type LoginResult struct {
	State          State                `json:"state"`
	User           *adminuser.AdminUser `json:"user,omitempty"`
	Session        *session.Session     `json:"session,omitempty"`
	Token          string               `json:"token,omitempty"`
	ChallengeToken string               `json:"challenge_token,omitempty"`
	Permissions    []string             `json:"permissions,omitempty"`
}
