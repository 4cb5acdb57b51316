package postgres

import (
	"github.com/commercemobile/storefront-admin/internal/activity"
	activitylogDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/activitylog"
	"gorm.io/gorm"
)

// ActivityRepository implements the activity.Repository interface using GORM
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Insert(entry *activity.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity.ToDataModel(entry)).Error; err != nil {
			return err
		}

		// Evict everything beyond the newest MaxEntries rows.
		keep := tx.Model(&activitylogDatamodel.ActivityLog{}).
			Select("id").
			Order("timestamp DESC, id DESC").
			Limit(activity.MaxEntries)
		return tx.
			Where("id NOT IN (?)", keep).
			Delete(&activitylogDatamodel.ActivityLog{}).Error
	})
}

func (r *ActivityRepository) List(filter activity.Filter, offset, limit int) ([]*activity.Entry, int64, error) {
	query := r.db.Model(&activitylogDatamodel.ActivityLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("timestamp <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	} else if offset > 0 {
		query = query.Offset(offset)
	}

	var records []activitylogDatamodel.ActivityLog
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*activity.Entry, 0, len(records))
	for i := range records {
		entries = append(entries, activity.FromDataModel(&records[i]))
	}
	return entries, total, nil
}

func (r *ActivityRepository) Clear() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&activitylogDatamodel.ActivityLog{})
	return result.RowsAffected, result.Error
}
