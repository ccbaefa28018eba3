package db

// Credentials holds the API client identity and the default user saved by `sbanken init`.
// Only one row exists; it always has ID 1.
type Credentials struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
	UserID   string `json:"user_id"`
}
