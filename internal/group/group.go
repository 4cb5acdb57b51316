package group

import (
	"time"

	groupDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/group"
	"encoding/json"
)

// UserGroup is a named permission bundle plus its member user ids. Group
// permissions are unioned with role permissions; membership can only add
// capabilities.
type UserGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (g *UserGroup) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

type Repository interface {
	Create(g *UserGroup) error
	GetByID(id string) (*UserGroup, error)
	List() ([]*UserGroup, error)
	ListForUser(userID string) ([]*UserGroup, error)
	Update(g *UserGroup) error
	Delete(id string) error
}

func ToDataModel(g *UserGroup) (*groupDatamodel.UserGroup, error) {
	perms, err := json.Marshal(g.Permissions)
	if err != nil {
		return nil, err
	}
	members, err := json.Marshal(g.Members)
	if err != nil {
		return nil, err
	}
	return &groupDatamodel.UserGroup{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Permissions: string(perms),
		Members:     string(members),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}, nil
}

func FromDataModel(m *groupDatamodel.UserGroup) (*UserGroup, error) {
	g := &UserGroup{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Permissions != "" {
		if err := json.Unmarshal([]byte(m.Permissions), &g.Permissions); err != nil {
			return nil, err
		}
	}
	if m.Members != "" {
		if err := json.Unmarshal([]byte(m.Members), &g.Members); err != nil {
			return nil, err
		}
	}
	return g, nil
}
