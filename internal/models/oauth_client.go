package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a machine client acting on behalf of the user that created it
type OAuthClient struct {
	ID         string         `gorm:"primaryKey" json:"client_id"`
	Secret     string         `gorm:"not null" json:"-"`
	Name       string         `json:"name"`
	Domain     string         `json:"domain"`
	UserID     uint           `gorm:"index" json:"user_id"`
	Scopes     string         `json:"scopes"` // Space-separated list of allowed scopes
	GrantTypes string         `json:"grant_types"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string {
	return c.ID
}

func (c *OAuthClient) GetSecret() string {
	return c.Secret
}

func (c *OAuthClient) GetDomain() string {
	return c.Domain
}

func (c *OAuthClient) IsPublic() bool {
	return false
}

// GetUserID returns the owning user id in the string form go-oauth2 expects
func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword checks a plain secret against the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
