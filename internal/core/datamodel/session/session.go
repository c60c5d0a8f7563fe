package session

import "time"

// RefreshToken rows are never deleted; revoked rows stay for audit.
type RefreshToken struct {
	ID            string     `gorm:"primaryKey;size:26"`
	AccountID     string     `gorm:"column:account_id;index:idx_refresh_tokens_account_id;not null"`
	TokenHash     string     `gorm:"column:token_hash;uniqueIndex:idx_refresh_tokens_token_hash;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	ExpiresAt     time.Time  `gorm:"column:expires_at;not null"`
	CreatedByIP   string     `gorm:"column:created_by_ip"`
	RevokedAt     *time.Time `gorm:"column:revoked_at"`
	RevokedByIP   *string    `gorm:"column:revoked_by_ip"`
	RevokedReason *string    `gorm:"column:revoked_reason"`
	ReplacedByID  *string    `gorm:"column:replaced_by_id;size:26"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
