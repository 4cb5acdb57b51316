package memory

import (
	"sync"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/group"
)

// Repository is the in-memory user-group store. State is process-local and
// lost on restart.
type Repository struct {
	mu     sync.RWMutex
	groups []*group.UserGroup
}

func NewRepository() *Repository {
	return &Repository{}
}

// clone copies the group including its slice fields, so neither side can
// reach the other's Members or Permissions backing arrays.
func clone(g *group.UserGroup) *group.UserGroup {
	cp := *g
	cp.Permissions = append([]string(nil), g.Permissions...)
	cp.Members = append([]string(nil), g.Members...)
	return &cp
}

func (r *Repository) Create(g *group.UserGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups = append(r.groups, clone(g))
	return nil
}

func (r *Repository) GetByID(id string) (*group.UserGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.groups {
		if g.ID == id {
			return clone(g), nil
		}
	}
	return nil, internal.ErrGroupNotFound
}

func (r *Repository) List() ([]*group.UserGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*group.UserGroup, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, clone(g))
	}
	return out, nil
}

func (r *Repository) ListForUser(userID string) ([]*group.UserGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*group.UserGroup
	for _, g := range r.groups {
		if g.HasMember(userID) {
			out = append(out, clone(g))
		}
	}
	return out, nil
}

func (r *Repository) Update(g *group.UserGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.groups {
		if existing.ID == g.ID {
			r.groups[i] = clone(g)
			return nil
		}
	}
	return internal.ErrGroupNotFound
}

func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, g := range r.groups {
		if g.ID == id {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			return nil
		}
	}
	return internal.ErrGroupNotFound
}
