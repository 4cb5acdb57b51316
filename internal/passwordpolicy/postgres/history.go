package postgres

import (
	adminuserDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/adminuser"
	"gorm.io/gorm"
)

// HistoryStore implements passwordpolicy.HistoryStore on GORM.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Add(userID, passwordHash string, keep int) error {
	record := adminuserDatamodel.PasswordHistory{
		UserID:       userID,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}

	if keep <= 0 {
		return nil
	}

	// Prune rows older than the newest `keep` entries.
	var keepIDs []int64
	err := s.db.Model(&adminuserDatamodel.PasswordHistory{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return err
	}

	return s.db.
		Where("user_id = ? AND id NOT IN ?", userID, keepIDs).
		Delete(&adminuserDatamodel.PasswordHistory{}).Error
}

func (s *HistoryStore) Hashes(userID string) ([]string, error) {
	var hashes []string
	err := s.db.Model(&adminuserDatamodel.PasswordHistory{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Pluck("password_hash", &hashes).Error
	return hashes, err
}
