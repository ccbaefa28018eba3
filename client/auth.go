package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/habedi/sbanken/auth"
	"github.com/rs/zerolog/log"
)

const tokenPath = "/identityserver/connect/token"

// Token returns a valid access token, fetching a new one through the client-credentials grant when
// the cache holds none.
func (c *Client) Token(ctx context.Context) (auth.AccessToken, error) {
	return c.accessToken(ctx)
}

// accessToken serves the cached token when it is still valid; otherwise it asks the identity server.
func (c *Client) accessToken(ctx context.Context) (auth.AccessToken, error) {
	if token, ok := c.cache.Get(); ok {
		return token, nil
	}

	urlStr, err := c.endpoint(tokenPath, nil)
	if err != nil {
		return auth.AccessToken{}, err
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return auth.AccessToken{}, Wrap(err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	log.Info().Msg("Requesting a new access token")
	body, err := c.send(req)
	if err != nil {
		return auth.AccessToken{}, err
	}

	wire, err := decode[tokenResponse](body)
	if err != nil {
		return auth.AccessToken{}, err
	}

	token := auth.AccessToken{
		AccessToken: *wire.AccessToken,
		ExpiresIn:   *wire.ExpiresIn,
		TokenType:   *wire.TokenType,
		IssuedAt:    c.now(),
	}
	c.cache.Set(token)
	log.Info().Time("expires_at", token.ExpiryDate()).Msg("Access token acquired")
	return token, nil
}
