package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/habedi/sbanken/db"
	"github.com/rs/zerolog/log"
)

// PersistentCache is a TokenCache that survives process restarts.
// Reads are served from memory; on the first miss the stored record is loaded once.
// Writes go to memory and then to the storer. Storage failures are logged and never
// surface to the caller, so the cache degrades to memory-only behaviour.
type PersistentCache struct {
	memory *MemoryCache
	storer TokenStorer
	loaded sync.Once
}

// NewPersistentCache is the constructor for a cache backed by the given storer.
func NewPersistentCache(storer TokenStorer, memory *MemoryCache) *PersistentCache {
	if memory == nil {
		memory = NewMemoryCache()
	}
	return &PersistentCache{memory: memory, storer: storer}
}

// NewPersistentCacheWithRepo constructs a PersistentCache over the TokenRepository row of
// clientID at the identity server behind baseURL.
func NewPersistentCacheWithRepo(tokenRepo db.TokenRepository, baseURL, clientID string) *PersistentCache {
	storer := &tokenRepoStorer{repo: tokenRepo, baseURL: strings.TrimRight(baseURL, "/"), clientID: clientID}
	return NewPersistentCache(storer, nil)
}

func (c *PersistentCache) Get() (AccessToken, bool) {
	if token, ok := c.memory.Get(); ok {
		return token, true
	}
	c.loaded.Do(c.load)
	return c.memory.Get()
}

func (c *PersistentCache) Set(token AccessToken) {
	c.loaded.Do(func() {})
	c.memory.Set(token)
	if c.storer == nil {
		return
	}
	record := &db.Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		IssuedAt:    token.IssuedAt,
	}
	if err := c.storer.UpsertTokenRecord(record); err != nil {
		log.Warn().Err(err).Msg("Failed to persist access token")
	}
}

// Peek returns the stored token regardless of its expiry.
func (c *PersistentCache) Peek() (AccessToken, bool) {
	c.loaded.Do(c.load)
	return c.memory.Peek()
}

// Clear drops the token from memory and from storage.
func (c *PersistentCache) Clear() error {
	c.loaded.Do(func() {})
	c.memory.Clear()
	if c.storer == nil {
		return nil
	}
	return c.storer.DeleteTokenRecord()
}

func (c *PersistentCache) load() {
	if c.storer == nil {
		return
	}
	record, err := c.storer.GetTokenRecord()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load persisted access token")
		return
	}
	if record == nil || record.AccessToken == "" {
		return
	}
	token := AccessToken{
		AccessToken: record.AccessToken,
		ExpiresIn:   record.ExpiresIn,
		TokenType:   record.TokenType,
		IssuedAt:    record.IssuedAt,
	}
	c.memory.Set(token)
	log.Debug().Time("expires_at", token.ExpiryDate()).Msg("Loaded persisted access token")
}

// tokenRepoStorer adapts db.TokenRepository to TokenStorer for one client.
type tokenRepoStorer struct {
	repo     db.TokenRepository
	baseURL  string
	clientID string
}

func (s *tokenRepoStorer) GetTokenRecord() (*db.Token, error) {
	return s.repo.Get(context.Background(), s.baseURL, s.clientID)
}

func (s *tokenRepoStorer) UpsertTokenRecord(token *db.Token) error {
	token.BaseURL = s.baseURL
	token.ClientID = s.clientID
	return s.repo.Upsert(context.Background(), token)
}

func (s *tokenRepoStorer) DeleteTokenRecord() error {
	return s.repo.Delete(context.Background(), s.baseURL, s.clientID)
}
