package group

import "time"

// Permissions and Members are stored as JSON arrays; both SQLite and
// Postgres keep them in a text column.
type UserGroup struct {
	ID          string    `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	Permissions string    `gorm:"column:permissions;type:text"`
	Members     string    `gorm:"column:members;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserGroup) TableName() string {
	return "admin_user_groups"
}
