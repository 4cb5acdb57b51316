package passwordpolicy

import (
	errors "github.com/commercemobile/storefront-admin/internal"
)

// UpdatePolicyDTO is a partial policy update; nil fields keep their current
// value.
type UpdatePolicyDTO struct {
	MinLength           *int  `json:"min_length,omitempty"`
	RequireUppercase    *bool `json:"require_uppercase,omitempty"`
	RequireLowercase    *bool `json:"require_lowercase,omitempty"`
	RequireNumbers      *bool `json:"require_numbers,omitempty"`
	RequireSpecialChars *bool `json:"require_special_chars,omitempty"`
	ExpiryDays          *int  `json:"expiry_days,omitempty"`
	PreventReuse        *int  `json:"prevent_reuse,omitempty"`
}

func (d UpdatePolicyDTO) Validate() *errors.AppError {
	if d.MinLength != nil && *d.MinLength < 1 {
		return errors.NewValidationFieldError("min_length", "must be positive", errors.ErrCodeValidationFailed)
	}
	if d.ExpiryDays != nil && *d.ExpiryDays < 0 {
		return errors.NewValidationFieldError("expiry_days", "cannot be negative", errors.ErrCodeValidationFailed)
	}
	if d.PreventReuse != nil && *d.PreventReuse < 0 {
		return errors.NewValidationFieldError("prevent_reuse", "cannot be negative", errors.ErrCodeValidationFailed)
	}
	return nil
}
