package activitylog

import "time"

type ActivityLog struct {
	ID         string    `gorm:"primaryKey;column:id"`
	UserID     string    `gorm:"column:user_id;index"`
	UserName   string    `gorm:"column:user_name"`
	Action     string    `gorm:"column:action;index"`
	Resource   string    `gorm:"column:resource;index"`
	ResourceID string    `gorm:"column:resource_id"`
	Details    string    `gorm:"column:details"`
	Timestamp  time.Time `gorm:"column:timestamp;index"`
	IPAddress  string    `gorm:"column:ip_address"`
	UserAgent  string    `gorm:"column:user_agent"`
}

func (ActivityLog) TableName() string {
	return "admin_activity_logs"
}
