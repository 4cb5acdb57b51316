package group

import (
	errors "github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/common/validation"
)

// CreateGroupDTO is the transport shape for creating a user group.
type CreateGroupDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Members     []string `json:"members"`
}

func (d CreateGroupDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(120)
	return v.Validate()
}

type UpdateGroupDTO struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

func (d UpdateGroupDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(120)
	}
	return v.Validate()
}

type MemberDTO struct {
	UserID string `json:"user_id"`
}

func (d MemberDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required()
	return v.Validate()
}
