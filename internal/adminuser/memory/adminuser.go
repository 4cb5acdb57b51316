package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
)

// Repository is the in-memory admin user store. State is process-local and
// lost on restart.
type Repository struct {
	mu    sync.RWMutex
	users map[string]*adminuser.AdminUser
}

func NewRepository() *Repository {
	return &Repository{users: make(map[string]*adminuser.AdminUser)}
}

func (r *Repository) Create(u *adminuser.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return internal.ErrDuplicateEmail
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *Repository) GetByID(id string) (*adminuser.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Repository) GetByEmail(email string) (*adminuser.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (r *Repository) List(filter adminuser.ListFilter, pagination internal.Pagination) ([]*adminuser.AdminUser, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*adminuser.AdminUser
	search := strings.ToLower(filter.Search)
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if pagination.Enabled() {
		start := pagination.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + pagination.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *Repository) Update(u *adminuser.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return internal.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return internal.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
