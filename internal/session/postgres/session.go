package postgres

import (
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	sessionDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/session"
	"github.com/commercemobile/storefront-admin/internal/session"
	"gorm.io/gorm"
)

// SessionRepository implements the session.Repository interface using GORM
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) session.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *session.Session) error {
	return r.db.Create(session.ToDataModel(s)).Error
}

func (r *SessionRepository) GetByID(id string) (*session.Session, error) {
	var record sessionDatamodel.Session
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrSessionNotFound
		}
		return nil, err
	}
	return session.FromDataModel(&record), nil
}

func (r *SessionRepository) List(filter session.ListFilter, offset, limit int) ([]*session.Session, int64, error) {
	query := r.db.Model(&sessionDatamodel.Session{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.IPAddress != "" {
		query = query.Where("ip_address = ?", filter.IPAddress)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	} else if offset > 0 {
		query = query.Offset(offset)
	}

	var records []sessionDatamodel.Session
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]*session.Session, 0, len(records))
	for i := range records {
		sessions = append(sessions, session.FromDataModel(&records[i]))
	}
	return sessions, total, nil
}

func (r *SessionRepository) Update(s *session.Session) error {
	record := session.ToDataModel(s)
	result := r.db.Model(&sessionDatamodel.Session{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"last_active": record.LastActive,
			"expires_at":  record.ExpiresAt,
			"is_active":   record.IsActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&sessionDatamodel.Session{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
