package adminuser

import "time"

type AdminUser struct {
	ID                 string     `gorm:"primaryKey;column:id"`
	Name               string     `gorm:"column:name;not null"`
	Email              string     `gorm:"column:email;uniqueIndex;not null"`
	Role               string     `gorm:"column:role;not null"`
	PasswordHash       string     `gorm:"column:password_hash;not null"`
	TwoFactorEnabled   bool       `gorm:"column:two_factor_enabled;default:false"`
	LastLogin          *time.Time `gorm:"column:last_login"`
	LastPasswordChange time.Time  `gorm:"column:last_password_change"`
	PasswordExpires    *time.Time `gorm:"column:password_expires"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// PasswordHistory keeps bcrypt hashes of previous passwords so reuse can be
// rejected. Rows beyond the policy's prevent_reuse window are pruned on
// insert.
type PasswordHistory struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	UserID       string    `gorm:"column:user_id;index;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordHistory) TableName() string {
	return "admin_password_history"
}
