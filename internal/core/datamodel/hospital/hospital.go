package hospital

import "time"

type Hospital struct {
	ID        string    `gorm:"primaryKey;size:26"`
	Name      string    `gorm:"column:name;uniqueIndex:idx_hospitals_name;not null"`
	Category  string    `gorm:"column:category"`
	City      string    `gorm:"column:city"`
	Address   string    `gorm:"column:address"`
	ContactNo string    `gorm:"column:contact_no"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Hospital) TableName() string {
	return "hospitals"
}
