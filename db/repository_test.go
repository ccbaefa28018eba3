package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/habedi/sbanken/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBaseURL = "https://api.example.test"

// setupTestDB opens a throwaway SQLite file with all tables migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestTokenRepositoryUpsertAndGet(t *testing.T) {
	repo := db.NewTokenRepository(setupTestDB(t))
	ctx := context.Background()

	tok, err := repo.Get(ctx, testBaseURL, "client-a")
	require.NoError(t, err)
	assert.Nil(t, tok)

	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &db.Token{BaseURL: testBaseURL, ClientID: "client-a", AccessToken: "first", TokenType: "Bearer", ExpiresIn: 3600, IssuedAt: issued}))
	require.NoError(t, repo.Upsert(ctx, &db.Token{BaseURL: testBaseURL, ClientID: "client-a", AccessToken: "second", TokenType: "Bearer", ExpiresIn: 60, IssuedAt: issued.Add(time.Hour)}))

	tok, err = repo.Get(ctx, testBaseURL, "client-a")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "second", tok.AccessToken)
	assert.Equal(t, int64(60), tok.ExpiresIn)
	assert.True(t, issued.Add(time.Hour).Equal(tok.IssuedAt))

	other, err := repo.Get(ctx, testBaseURL, "client-b")
	require.NoError(t, err)
	assert.Nil(t, other, "tokens are scoped per client id")

	sandbox, err := repo.Get(ctx, "https://sandbox.example.test", "client-a")
	require.NoError(t, err)
	assert.Nil(t, sandbox, "tokens are scoped per identity server")

	require.NoError(t, repo.Delete(ctx, testBaseURL, "client-a"))
	tok, err = repo.Get(ctx, testBaseURL, "client-a")
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestTokenRepositoryUpsert_RequiresKey(t *testing.T) {
	repo := db.NewTokenRepository(setupTestDB(t))
	assert.Error(t, repo.Upsert(context.Background(), &db.Token{AccessToken: "x"}))
	assert.Error(t, repo.Upsert(context.Background(), &db.Token{ClientID: "client-a", AccessToken: "x"}))
	assert.Error(t, repo.Upsert(context.Background(), &db.Token{BaseURL: testBaseURL, AccessToken: "x"}))
}

func TestMigrate_DropsTokensKeyedByClientOnly(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "old.db")), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, conn.Exec(`CREATE TABLE tokens (client_id text PRIMARY KEY, access_token text, token_type text, expires_in integer, issued_at datetime)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO tokens (client_id, access_token) VALUES ('client-a', 'old')`).Error)

	require.NoError(t, db.Migrate(conn))

	assert.True(t, conn.Migrator().HasColumn(&db.Token{}, "BaseURL"))
	tok, err := db.NewTokenRepository(conn).Get(context.Background(), testBaseURL, "client-a")
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestCredentialsRepository(t *testing.T) {
	repo := db.NewCredentialsRepository(setupTestDB(t))
	ctx := context.Background()

	creds, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, repo.Upsert(ctx, &db.Credentials{ClientID: "id", Secret: "secret", UserID: "12345"}))
	require.NoError(t, repo.Upsert(ctx, &db.Credentials{ClientID: "id2", Secret: "secret2", UserID: "67890"}))

	creds, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "id2", creds.ClientID)
	assert.Equal(t, "secret2", creds.Secret)
	assert.Equal(t, "67890", creds.UserID)
}

func TestSnapshotRepository(t *testing.T) {
	repo := db.NewSnapshotRepository(setupTestDB(t))
	ctx := context.Background()

	acc := db.Account{
		AccountNumber: "97100000000",
		UserID:        "12345",
		Name:          "Generell konto",
		AccountType:   "Konto",
		Available:     decimal.RequireFromString("100.50"),
		Balance:       decimal.RequireFromString("1200"),
		CreditLimit:   decimal.RequireFromString("500"),
		RefreshedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.PutAccount(ctx, acc))
	acc.Name = "Renamed"
	require.NoError(t, repo.PutAccount(ctx, acc))

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Renamed", accounts[0].Name)
	assert.True(t, decimal.RequireFromString("100.50").Equal(accounts[0].Available))

	day := time.Date(2018, 3, 13, 0, 0, 0, 0, time.UTC)
	txs := []db.Transaction{
		{TransactionID: "a", AccountingDate: day, Amount: decimal.RequireFromString("-149"), Text: "older"},
		{TransactionID: "b", AccountingDate: day.AddDate(0, 0, 4), Amount: decimal.RequireFromString("-10"), Text: "newer"},
	}
	require.NoError(t, repo.ReplaceTransactions(ctx, acc.AccountNumber, txs))
	require.NoError(t, repo.ReplaceTransactions(ctx, acc.AccountNumber, txs))

	stored, err := repo.ListTransactions(ctx, acc.AccountNumber)
	require.NoError(t, err)
	require.Len(t, stored, 2, "replacing must not duplicate rows")
	assert.Equal(t, "newer", stored[0].Text)
	assert.True(t, decimal.RequireFromString("-149").Equal(stored[1].Amount))

	require.NoError(t, repo.Prune(ctx, []string{acc.AccountNumber}))
	accounts, err = repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1, "kept accounts survive a prune")
	stored, err = repo.ListTransactions(ctx, acc.AccountNumber)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	require.NoError(t, repo.Prune(ctx, []string{"97100000099"}))
	accounts, err = repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	stored, err = repo.ListTransactions(ctx, acc.AccountNumber)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRepositories_Uninitialized(t *testing.T) {
	ctx := context.Background()
	_, err := db.NewTokenRepository(nil).Get(ctx, "x", "x")
	assert.Error(t, err)
	_, err = db.NewCredentialsRepository(nil).Get(ctx)
	assert.Error(t, err)
	_, err = db.NewSnapshotRepository(nil).ListAccounts(ctx)
	assert.Error(t, err)
}
