package auth

import (
	errors "github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type VerifyTwoFactorDTO struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

func (d VerifyTwoFactorDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("challenge_token", d.ChallengeToken).Required()
	v.Field("code", d.Code).Required().MinLength(6).MaxLength(6)
	return v.Validate()
}
