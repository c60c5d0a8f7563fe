package account

import "time"

type Account struct {
	ID           string    `gorm:"primaryKey;size:26"`
	Username     string    `gorm:"column:username;uniqueIndex:idx_accounts_username;not null"`
	Email        string    `gorm:"column:email;uniqueIndex:idx_accounts_email;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	RegNo        string    `gorm:"column:reg_no;uniqueIndex:idx_accounts_reg_no;not null"`
	Role         string    `gorm:"column:role;index;not null"`
	Hospital     string    `gorm:"column:hospital"`
	Designation  string    `gorm:"column:designation"`
	ContactNo    string    `gorm:"column:contact_no"`
	Availability bool      `gorm:"column:availability;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
