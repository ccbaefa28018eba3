package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	transactionsPath = "/Bank/api/v2/Transactions"

	// DefaultPageLength is the page size used when a query leaves Length unset.
	DefaultPageLength = 10
)

// TransactionQuery selects one page of an account's transactions.
// A zero EndDate means "now"; a non-positive Length means DefaultPageLength.
type TransactionQuery struct {
	UserID        string
	AccountNumber string
	StartDate     time.Time
	EndDate       time.Time
	Index         int
	Length        int
}

// NewTransactionQuery builds a query for the first page ending now.
func NewTransactionQuery(userID, accountNumber string, startDate time.Time) TransactionQuery {
	return TransactionQuery{
		UserID:        userID,
		AccountNumber: accountNumber,
		StartDate:     startDate,
		EndDate:       time.Now(),
		Index:         0,
		Length:        DefaultPageLength,
	}
}

// withDefaults fills EndDate and Length.
func (q TransactionQuery) withDefaults(now time.Time) TransactionQuery {
	if q.EndDate.IsZero() {
		q.EndDate = now
	}
	if q.Length <= 0 {
		q.Length = DefaultPageLength
	}
	return q
}

// queryDateLayout is RFC 3339 with a numeric offset even for UTC.
const queryDateLayout = "2006-01-02T15:04:05-07:00"

// values encodes the query parameters; dates keep their own offset.
func (q TransactionQuery) values() url.Values {
	return url.Values{
		"index":     {strconv.Itoa(q.Index)},
		"length":    {strconv.Itoa(q.Length)},
		"startDate": {q.StartDate.Format(queryDateLayout)},
		"endDate":   {q.EndDate.Format(queryDateLayout)},
	}
}

// Transactions fetches one page of transactions for an account.
func (c *Client) Transactions(ctx context.Context, query TransactionQuery) (*TransactionResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	query = query.withDefaults(c.now())
	if query.Index < 0 {
		return nil, NewMessage(fmt.Sprintf("page index must not be negative, got %d", query.Index))
	}

	urlStr, err := c.endpoint(transactionsPath, query.values(), query.UserID, query.AccountNumber)
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
	resp, err := decode[TransactionResponse](body)
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(resp.Items)).Int("available", resp.AvailableItems).Msg("Fetched transactions")
	return &resp, nil
}
