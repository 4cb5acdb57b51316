package adminuser

import (
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	adminuserDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/adminuser"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleViewer     Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// AdminUser is a back-office account. PasswordHash is a salted bcrypt hash;
// plaintext passwords are never stored.
type AdminUser struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               Role       `json:"role"`
	PasswordHash       string     `json:"-"`
	TwoFactorEnabled   bool       `json:"two_factor_enabled"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	LastPasswordChange time.Time  `json:"last_password_change"`
	PasswordExpires    *time.Time `json:"password_expires,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ListFilter narrows user listings; zero values mean "no filtering".
type ListFilter struct {
	Role   Role
	Search string
}

type Repository interface {
	Create(u *AdminUser) error
	GetByID(id string) (*AdminUser, error)
	GetByEmail(email string) (*AdminUser, error)
	List(filter ListFilter, pagination internal.Pagination) ([]*AdminUser, int64, error)
	Update(u *AdminUser) error
	Delete(id string) error
}

func ToDataModel(u *AdminUser) *adminuserDatamodel.AdminUser {
	return &adminuserDatamodel.AdminUser{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               string(u.Role),
		PasswordHash:       u.PasswordHash,
		TwoFactorEnabled:   u.TwoFactorEnabled,
		LastLogin:          u.LastLogin,
		LastPasswordChange: u.LastPasswordChange,
		PasswordExpires:    u.PasswordExpires,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func FromDataModel(m *adminuserDatamodel.AdminUser) *AdminUser {
	return &AdminUser{
		ID:                 m.ID,
		Name:               m.Name,
		Email:              m.Email,
		Role:               Role(m.Role),
		PasswordHash:       m.PasswordHash,
		TwoFactorEnabled:   m.TwoFactorEnabled,
		LastLogin:          m.LastLogin,
		LastPasswordChange: m.LastPasswordChange,
		PasswordExpires:    m.PasswordExpires,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
