package registration

import "time"

type Request struct {
	ID           string    `gorm:"primaryKey;size:26"`
	RegNo        string    `gorm:"column:reg_no;uniqueIndex:idx_registration_requests_reg_no;not null"`
	Username     string    `gorm:"column:username;not null"`
	Email        string    `gorm:"column:email;uniqueIndex:idx_registration_requests_email;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Hospital     string    `gorm:"column:hospital;not null"`
	Designation  string    `gorm:"column:designation"`
	ContactNo    string    `gorm:"column:contact_no"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Request) TableName() string {
	return "registration_requests"
}
