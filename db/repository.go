package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository defines decoupled operations for token persistence.
type TokenRepository interface {
	Get(ctx context.Context, baseURL, clientID string) (*Token, error)
	Upsert(ctx context.Context, token *Token) error
	Delete(ctx context.Context, baseURL, clientID string) error
}

// CredentialsRepository defines decoupled operations for stored client credentials.
type CredentialsRepository interface {
	Get(ctx context.Context) (*Credentials, error)
	Upsert(ctx context.Context, creds *Credentials) error
}

// SnapshotRepository defines decoupled operations for account and transaction snapshots.
type SnapshotRepository interface {
	PutAccount(ctx context.Context, account Account) error
	ReplaceTransactions(ctx context.Context, accountNumber string, txs []Transaction) error
	ListAccounts(ctx context.Context) ([]Account, error)
	ListTransactions(ctx context.Context, accountNumber string) ([]Transaction, error)
	Prune(ctx context.Context, keep []string) error
}

// gormTokenRepo is a GORM-backed implementation of TokenRepository.
// Use constructor NewTokenRepository to obtain an instance.
type gormTokenRepo struct{ db *gorm.DB }

// gormCredentialsRepo is a GORM-backed implementation of CredentialsRepository.
type gormCredentialsRepo struct{ db *gorm.DB }

// gormSnapshotRepo is a GORM-backed implementation of SnapshotRepository.
type gormSnapshotRepo struct{ db *gorm.DB }

// NewTokenRepository creates a TokenRepository. Accepts *gorm.DB to avoid global access.
func NewTokenRepository(db *gorm.DB) TokenRepository { return &gormTokenRepo{db: db} }

// NewCredentialsRepository creates a CredentialsRepository.
func NewCredentialsRepository(db *gorm.DB) CredentialsRepository {
	return &gormCredentialsRepo{db: db}
}

// NewSnapshotRepository creates a SnapshotRepository.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository { return &gormSnapshotRepo{db: db} }

var errNotInitialized = fmt.Errorf("repository not initialized")

func (r *gormTokenRepo) Get(ctx context.Context, baseURL, clientID string) (*Token, error) {
	if r.db == nil {
		return nil, errNotInitialized
	}
	var token Token
	err := r.db.WithContext(ctx).First(&token, "base_url = ? AND client_id = ?", baseURL, clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *gormTokenRepo) Upsert(ctx context.Context, token *Token) error {
	if r.db == nil {
		return errNotInitialized
	}
	if token == nil || token.ClientID == "" || token.BaseURL == "" {
		return fmt.Errorf("token record requires a base url and a client id")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base_url"}, {Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "token_type", "expires_in", "issued_at"}),
	}).Create(token).Error
}

func (r *gormTokenRepo) Delete(ctx context.Context, baseURL, clientID string) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Where("base_url = ? AND client_id = ?", baseURL, clientID).Delete(&Token{}).Error
}

func (r *gormCredentialsRepo) Get(ctx context.Context) (*Credentials, error) {
	if r.db == nil {
		return nil, errNotInitialized
	}
	var creds Credentials
	err := r.db.WithContext(ctx).First(&creds, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *gormCredentialsRepo) Upsert(ctx context.Context, creds *Credentials) error {
	if r.db == nil {
		return errNotInitialized
	}
	creds.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(creds).Error
}

func (r *gormSnapshotRepo) PutAccount(ctx context.Context, account Account) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&account).Error
}

func (r *gormSnapshotRepo) ReplaceTransactions(ctx context.Context, accountNumber string, txs []Transaction) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_number = ?", accountNumber).Delete(&Transaction{}).Error; err != nil {
			return err
		}
		if len(txs) == 0 {
			return nil
		}
		for i := range txs {
			txs[i].ID = 0
			txs[i].AccountNumber = accountNumber
		}
		return tx.Create(&txs).Error
	})
}

func (r *gormSnapshotRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	if r.db == nil {
		return nil, errNotInitialized
	}
	var accounts []Account
	if err := r.db.WithContext(ctx).Order("account_number").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *gormSnapshotRepo) ListTransactions(ctx context.Context, accountNumber string) ([]Transaction, error) {
	if r.db == nil {
		return nil, errNotInitialized
	}
	var txs []Transaction
	err := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Order("accounting_date DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// Prune removes every account not listed in keep together with its transactions.
func (r *gormSnapshotRepo) Prune(ctx context.Context, keep []string) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := tx.Unscoped().Where("1 = 1")
		accounts := tx.Unscoped().Where("1 = 1")
		if len(keep) > 0 {
			txs = tx.Unscoped().Where("account_number NOT IN ?", keep)
			accounts = tx.Unscoped().Where("account_number NOT IN ?", keep)
		}
		if err := txs.Delete(&Transaction{}).Error; err != nil {
			return err
		}
		return accounts.Delete(&Account{}).Error
	})
}
