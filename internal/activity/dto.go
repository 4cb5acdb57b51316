package activity

import (
	"time"

	"github.com/commercemobile/storefront-admin/internal"
)

type QueryDTO struct {
	UserID     string
	Action     string
	Resource   string
	StartDate  *time.Time
	EndDate    *time.Time
	Pagination internal.Pagination
}

func (d QueryDTO) Validate() error {
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return internal.NewValidationFieldError("end_date", "must not be before start_date", internal.ErrCodeValidationFailed)
	}
	return nil
}
