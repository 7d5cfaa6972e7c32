package models

import (
	"time"
)

type OAuthToken struct {
	ID           uint      `gorm:"primaryKey"`
	ClientID     string    `gorm:"not null;index"`
	UserID       *string   // Nullable: client credentials tokens without an owner
	AccessToken  string    `gorm:"uniqueIndex;not null"`
	RefreshToken *string
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
