package role

import "time"

type RolePermission struct {
	ID          string    `gorm:"primaryKey;size:26"`
	Role        string    `gorm:"column:role;uniqueIndex:idx_role_permissions_role;not null"`
	Permissions int       `gorm:"column:permissions;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
