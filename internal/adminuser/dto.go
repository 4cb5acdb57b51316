package adminuser

import (
	errors "github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/common/validation"
)

// CreateUserDTO is the transport shape for creating an admin user.
type CreateUserDTO struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	Password         string `json:"password"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(120)
	v.Field("email", d.Email).Required().Email()
	v.Field("role", d.Role).Required().
		OneOf(string(RoleSuperAdmin), string(RoleAdmin), string(RoleEditor), string(RoleViewer))
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type UpdateUserDTO struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Role             *string `json:"role,omitempty"`
	TwoFactorEnabled *bool   `json:"two_factor_enabled,omitempty"`
}

func (d UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Email != nil {
		v.Field("email", *d.Email).Required().Email()
	}
	if d.Role != nil {
		v.Field("role", *d.Role).Required().
			OneOf(string(RoleSuperAdmin), string(RoleAdmin), string(RoleEditor), string(RoleViewer))
	}
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(120)
	}
	return v.Validate()
}

type ChangePasswordDTO struct {
	Password string `json:"password"`
}

func (d ChangePasswordDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type TwoFactorDTO struct {
	Enabled bool `json:"enabled"`
}
