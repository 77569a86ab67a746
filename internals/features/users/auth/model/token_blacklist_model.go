package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenBlacklist holds revoked tokens until they would have expired
// anyway. Rows past blacklist_expires_at are prunable.
type TokenBlacklist struct {
	BlacklistID uuid.UUID `gorm:"column:blacklist_id;type:uuid;default:gen_random_uuid();primaryKey" json:"blacklist_id"`

	BlacklistToken     string    `gorm:"column:blacklist_token;type:text;not null;uniqueIndex:uq_token_blacklist_token" json:"-"`
	BlacklistExpiresAt time.Time `gorm:"column:blacklist_expires_at;not null;index:idx_token_blacklist_expiry" json:"blacklist_expires_at"`

	BlacklistCreatedAt time.Time `gorm:"column:blacklist_created_at;autoCreateTime" json:"blacklist_created_at"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }
