package auth

import "time"

// AccessToken is a bearer credential issued by the identity server.
// IssuedAt is stamped by the client when the token is decoded; it is not part of the wire payload.
type AccessToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	TokenType   string    `json:"token_type"`
	IssuedAt    time.Time `json:"-"`
}

// NewAccessToken creates a token issued now.
func NewAccessToken(accessToken string, expiresIn int64, tokenType string) AccessToken {
	return AccessToken{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		TokenType:   tokenType,
		IssuedAt:    time.Now(),
	}
}

// ExpiryDate returns the absolute instant after which the token must not be used.
func (t AccessToken) ExpiryDate() time.Time {
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// ValidAt reports whether the token is still usable at the given instant.
func (t AccessToken) ValidAt(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiryDate())
}
