package db

import "time"

// Token is the persisted access token of one API client at one identity server.
type Token struct {
	BaseURL     string    `gorm:"primaryKey" json:"base_url"`
	ClientID    string    `gorm:"primaryKey" json:"client_id"`
	AccessToken string    `json:"access_token,omitempty"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiresIn   int64     `json:"expires_in,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}
