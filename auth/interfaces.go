package auth

import "github.com/habedi/sbanken/db"

// TokenStorer defines the contract for any component that can persist the token of one API client.
type TokenStorer interface {
	GetTokenRecord() (*db.Token, error)
	UpsertTokenRecord(token *db.Token) error
	DeleteTokenRecord() error
}
