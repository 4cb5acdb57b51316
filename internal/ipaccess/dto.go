package ipaccess

import (
	"github.com/commercemobile/storefront-admin/internal"
)

type UpdateSettingsDTO struct {
	Enabled *bool `json:"enabled,omitempty"`
	Mode    *Mode `json:"mode,omitempty"`
}

func (d UpdateSettingsDTO) Validate() error {
	if d.Mode != nil && !d.Mode.Valid() {
		return internal.NewValidationFieldError("mode", "must be allowlist or denylist", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RuleDTO struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

func (d RuleDTO) Validate() error {
	if d.Value == "" {
		return internal.NewValidationFieldError("value", "is required", internal.ErrCodeValidationFailed)
	}
	return ValidateRule(d.Value)
}
