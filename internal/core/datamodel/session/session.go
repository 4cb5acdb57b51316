package session

import "time"

type Session struct {
	ID         string    `gorm:"primaryKey;column:id"`
	UserID     string    `gorm:"column:user_id;index;not null"`
	UserName   string    `gorm:"column:user_name"`
	UserAgent  string    `gorm:"column:user_agent"`
	IPAddress  string    `gorm:"column:ip_address;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	LastActive time.Time `gorm:"column:last_active"`
	ExpiresAt  time.Time `gorm:"column:expires_at"`
	IsActive   bool      `gorm:"column:is_active;default:true;index"`
}

func (Session) TableName() string {
	return "admin_sessions"
}
