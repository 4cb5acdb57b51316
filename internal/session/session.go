package session

import (
	"time"

	sessionDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/session"
)

// Session ties a user to a user-agent/IP pair. Terminated sessions keep
// their record with IsActive=false so the audit trail stays complete.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAgent  string    `json:"user_agent"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsActive   bool      `json:"is_active"`
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// ListFilter narrows session listings; zero values mean "no filtering".
type ListFilter struct {
	UserID     string
	IPAddress  string
	ActiveOnly bool
}

type Repository interface {
	Create(s *Session) error
	GetByID(id string) (*Session, error)
	List(filter ListFilter, offset, limit int) ([]*Session, int64, error)
	Update(s *Session) error
	// DeactivateExpired flips the active flag on every active session whose
	// expiry has passed and returns how many were touched.
	DeactivateExpired(now time.Time) (int64, error)
}

func ToDataModel(s *Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		ID:         s.ID,
		UserID:     s.UserID,
		UserName:   s.UserName,
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
		ExpiresAt:  s.ExpiresAt,
		IsActive:   s.IsActive,
	}
}

func FromDataModel(m *sessionDatamodel.Session) *Session {
	return &Session{
		ID:         m.ID,
		UserID:     m.UserID,
		UserName:   m.UserName,
		UserAgent:  m.UserAgent,
		IPAddress:  m.IPAddress,
		CreatedAt:  m.CreatedAt,
		LastActive: m.LastActive,
		ExpiresAt:  m.ExpiresAt,
		IsActive:   m.IsActive,
	}
}
