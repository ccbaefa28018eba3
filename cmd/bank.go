package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/habedi/sbanken/auth"
	"github.com/habedi/sbanken/client"
	"github.com/habedi/sbanken/config"
	"github.com/habedi/sbanken/db"
	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/rs/zerolog/log"
)

// resolveSettings loads the configuration and fills missing credentials from the ones
// saved by `sbanken init`. Configured values win over stored ones.
func resolveSettings(ctx context.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, clierr.New(clierr.Validation, "Invalid configuration: "+err.Error(), err)
	}

	if cfg.ClientID == "" || cfg.Secret == "" || cfg.UserID == "" {
		creds, err := db.NewCredentialsRepository(db.GetDB()).Get(ctx)
		if err != nil {
			return cfg, clierr.New(clierr.Internal, "Failed to read the stored credentials.", err)
		}
		if creds != nil {
			if cfg.ClientID == "" {
				cfg.ClientID = creds.ClientID
			}
			if cfg.Secret == "" {
				cfg.Secret = creds.Secret
			}
			if cfg.UserID == "" {
				cfg.UserID = creds.UserID
			}
		}
	}

	if !cfg.HasCredentials() {
		return cfg, clierr.New(clierr.Auth,
			"No client credentials found. Please run 'sbanken init' or set SBANKEN_CLIENT_ID and SBANKEN_SECRET.", nil)
	}
	return cfg, nil
}

func requireUserID(cfg config.Config) error {
	if cfg.UserID == "" {
		return clierr.New(clierr.Validation,
			"No user ID found. Please run 'sbanken init' or set SBANKEN_USER_ID.", nil)
	}
	return nil
}

// newBankClient builds an API client whose token survives between invocations.
func newBankClient(cfg config.Config) (*client.Client, *auth.PersistentCache) {
	cache := auth.NewPersistentCacheWithRepo(db.NewTokenRepository(db.GetDB()), cfg.BaseURL, cfg.ClientID)
	opts := []client.Option{
		client.WithBaseURL(cfg.BaseURL),
		client.WithTokenCache(cache),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(cfg.RateLimit))
	}
	return client.New(cfg.ClientID, cfg.Secret, opts...), cache
}

// connect resolves settings and makes sure a usable access token is at hand, so that a
// credentials problem is reported as such before any banking call is made.
func connect(ctx context.Context) (*client.Client, config.Config, error) {
	cfg, err := resolveSettings(ctx)
	if err != nil {
		return nil, cfg, err
	}
	c, _ := newBankClient(cfg)
	if _, err := c.Token(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to obtain an access token")
		return nil, cfg, tokenError(err)
	}
	return c, cfg, nil
}

// tokenError reports a token endpoint that answered without a token as rejected credentials.
// Failures to reach the identity server go through bankError.
func tokenError(err error) error {
	if client.IsKind(err, client.KindDecodeFailure) {
		return clierr.New(clierr.Auth,
			"Failed to authenticate. Please check your client ID and secret: "+err.Error(), err)
	}
	return bankError("Failed to reach the identity server", err)
}

// bankError turns an API client failure into a CLI error.
func bankError(action string, err error) error {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return clierr.New(clierr.Internal, action+": "+err.Error(), err)
	}
	if apiErr.Kind == client.KindMessage {
		return clierr.New(clierr.Rejected, action+": "+apiErr.Error(), err)
	}
	return clierr.New(clierr.Remote, action+": "+apiErr.Error(), err)
}
