package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const transfersPath = "/Bank/api/v1/Transfers"

// undefinedTransferError is reported when the bank flags a transfer as failed without saying why.
const undefinedTransferError = "Undefined error"

// Transfer moves amount from one of the user's accounts to another.
// A response that decodes fine but has isError set is returned as a KindMessage error, never as success.
func (c *Client) Transfer(ctx context.Context, userID, fromAccount, toAccount, message string, amount decimal.Decimal) (*TransferResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	urlStr, err := c.endpoint(transfersPath, nil, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(TransferRequest{
		FromAccount: fromAccount,
		ToAccount:   toAccount,
		Message:     message,
		Amount:      amount,
	})
	if err != nil {
		return nil, DecodeFailure(err)
	}

	req, err := createRequest(ctx, http.MethodPost, urlStr, token.AccessToken, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	resp, err := decode[TransferResponse](body)
	if err != nil {
		return nil, err
	}

	if resp.IsError {
		text := undefinedTransferError
		if resp.ErrorMessage != nil {
			text = *resp.ErrorMessage
		}
		log.Warn().Str("reason", text).Msg("Transfer rejected by the bank")
		return nil, NewMessage(text)
	}

	log.Info().Str("amount", amount.String()).Msg("Transfer accepted")
	return &resp, nil
}
