package client

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

const accountsPath = "/Bank/api/v1/Accounts"

// Accounts lists the accounts of the given user.
func (c *Client) Accounts(ctx context.Context, userID string) ([]Account, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	urlStr, err := c.endpoint(accountsPath, nil, userID)
	if err != nil {
		return nil, err
	}
	req, err := createRequest(ctx, http.MethodGet, urlStr, token.AccessToken, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	resp, err := decode[accountsResponse](body)
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(resp.Items)).Msg("Fetched accounts")
	return resp.Items, nil
}
