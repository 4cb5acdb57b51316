package postgres

import (
	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	adminuserDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/adminuser"
	"gorm.io/gorm"
)

// AdminUserRepository implements the adminuser.Repository interface using GORM
type AdminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) adminuser.Repository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) Create(u *adminuser.AdminUser) error {
	var count int64
	if err := r.db.Model(&adminuserDatamodel.AdminUser{}).
		Where("LOWER(email) = LOWER(?)", u.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return internal.ErrDuplicateEmail
	}
	return r.db.Create(adminuser.ToDataModel(u)).Error
}

func (r *AdminUserRepository) GetByID(id string) (*adminuser.AdminUser, error) {
	var record adminuserDatamodel.AdminUser
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return adminuser.FromDataModel(&record), nil
}

func (r *AdminUserRepository) GetByEmail(email string) (*adminuser.AdminUser, error) {
	var record adminuserDatamodel.AdminUser
	err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return adminuser.FromDataModel(&record), nil
}

func (r *AdminUserRepository) List(filter adminuser.ListFilter, pagination internal.Pagination) ([]*adminuser.AdminUser, int64, error) {
	query := r.db.Model(&adminuserDatamodel.AdminUser{})
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at ASC")
	if pagination.Enabled() {
		query = query.Limit(pagination.Limit).Offset(pagination.Offset())
	}

	var records []adminuserDatamodel.AdminUser
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*adminuser.AdminUser, 0, len(records))
	for i := range records {
		users = append(users, adminuser.FromDataModel(&records[i]))
	}
	return users, total, nil
}

func (r *AdminUserRepository) Update(u *adminuser.AdminUser) error {
	record := adminuser.ToDataModel(u)
	result := r.db.Model(&adminuserDatamodel.AdminUser{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":                 record.Name,
			"email":                record.Email,
			"role":                 record.Role,
			"password_hash":        record.PasswordHash,
			"two_factor_enabled":   record.TwoFactorEnabled,
			"last_login":           record.LastLogin,
			"last_password_change": record.LastPasswordChange,
			"password_expires":     record.PasswordExpires,
			"updated_at":           record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *AdminUserRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&adminuserDatamodel.AdminUser{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
