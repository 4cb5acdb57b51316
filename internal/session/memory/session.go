package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/session"
)

// Repository is the in-memory session store. State is process-local and
// lost on restart.
type Repository struct {
	mu       sync.RWMutex
	sessions []*session.Session
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Create(s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	r.sessions = append(r.sessions, &cp)
	return nil
}

func (r *Repository) GetByID(id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, internal.ErrSessionNotFound
}

func (r *Repository) List(filter session.ListFilter, offset, limit int) ([]*session.Session, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*session.Session
	for _, s := range r.sessions {
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if filter.IPAddress != "" && s.IPAddress != filter.IPAddress {
			continue
		}
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		cp := *s
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *Repository) Update(s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.sessions {
		if existing.ID == s.ID {
			cp := *s
			r.sessions[i] = &cp
			return nil
		}
	}
	return internal.ErrSessionNotFound
}

func (r *Repository) DeactivateExpired(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range r.sessions {
		if s.IsActive && s.ExpiresAt.Before(now) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}
