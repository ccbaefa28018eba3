package client

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/habedi/sbanken/auth"
)

const (
	testUserID        = "12345"
	testAccountNumber = "97100000000"

	goodTokenData = `{"access_token": "TOKEN", "expires_in": 12345, "token_type": "TYPE"}`
	badData       = `[tralala`

	goodAccountData = `{
		"availableItems": 1,
		"items": [{
			"accountNumber": "12345678901",
			"customerId": "12345",
			"ownerCustomerId": "12345",
			"name": "Generell konto",
			"accountType": "Konto",
			"available": 100.0,
			"balance": 1200.0,
			"creditLimit": 500.0,
			"defaultAccount": true
		}]
	}`

	goodTransactionsData = `{
		"availableItems": 2,
		"items": [{
			"transactionId": "0",
			"accountingDate": "2018-03-17T00:00:00+01:00",
			"interestDate": "2018-03-17T00:00:00+01:00",
			"otherAccountNumberSpecified": false,
			"amount": -10.000,
			"text": "VISA",
			"transactionType": "Bekreftet VISA",
			"transactionTypeCode": 946,
			"transactionTypeText": "",
			"isReservation": true,
			"cardDetailsSpecified": false
		},
		{
			"transactionId": "43465574623452563456",
			"accountingDate": "2018-03-13T00:00:00+01:00",
			"interestDate": "2018-03-13T00:00:00+01:00",
			"otherAccountNumberSpecified": false,
			"amount": -149.000,
			"text": "*0923 09.03 NOK 149.00 ITUNES.COM/BILL Kurs: 1.0000",
			"transactionType": "VISA VARE",
			"transactionTypeCode": 714,
			"transactionTypeText": "VISA VARE",
			"isReservation": false,
			"reservationType": null,
			"source": 1,
			"cardDetails": {
				"cardNumber": "*0123",
				"currencyAmount": 149.000,
				"currencyRate": 1.00000,
				"merchantCategoryCode": "5735",
				"merchantCategoryDescription": "Musikk",
				"merchantCity": "ITUNES.COM/BI",
				"merchantName": "ITUNES.COM/BILL",
				"originalCurrencyCode": "NOK",
				"purchaseDate": "2018-03-09T00:00:00+01:00",
				"transactionId": "1234655513452435645"
			},
			"cardDetailsSpecified": true
		}]
	}`
)

var fixedNow = time.Date(2018, 3, 17, 12, 0, 0, 0, time.UTC)

// cannedResponse is what mockTransport answers for one path prefix.
type cannedResponse struct {
	body   string
	status int
	err    error
	noBody bool
}

// recordedRequest keeps a request together with its consumed body.
type recordedRequest struct {
	req  *http.Request
	body []byte
}

// mockTransport is a Doer that records every request and replies with canned responses by path prefix.
type mockTransport struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]cannedResponse
	open      int
}

// trackedBody counts unclosed response bodies on its transport.
type trackedBody struct {
	io.Reader
	m      *mockTransport
	closed bool
}

func (b *trackedBody) Close() error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if !b.closed {
		b.closed = true
		b.m.open--
	}
	return nil
}

func newMockTransport() *mockTransport {
	return &mockTransport{responses: map[string]cannedResponse{
		tokenPath:        {body: goodTokenData},
		accountsPath:     {body: goodAccountData},
		transactionsPath: {body: goodTransactionsData},
		transfersPath:    {body: `{"isError": false}`},
	}}
}

func (m *mockTransport) respond(prefix string, r cannedResponse) {
	m.mu.Lock()
	m.responses[prefix] = r
	m.mu.Unlock()
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{req: req, body: body})
	canned := cannedResponse{noBody: true}
	for prefix, r := range m.responses {
		if strings.HasPrefix(req.URL.Path, prefix) {
			canned = r
			break
		}
	}
	m.mu.Unlock()

	if canned.err != nil && canned.body == "" {
		return nil, canned.err
	}
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Request: req}
	if canned.status != 0 {
		resp.StatusCode = canned.status
	}
	if !canned.noBody {
		m.mu.Lock()
		m.open++
		m.mu.Unlock()
		resp.Body = &trackedBody{Reader: bytes.NewReader([]byte(canned.body)), m: m}
	}
	return resp, canned.err
}

// openBodies reports how many response bodies were handed out and never closed.
func (m *mockTransport) openBodies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *mockTransport) lastRequest() *recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	r := m.requests[len(m.requests)-1]
	return &r
}

func (m *mockTransport) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if strings.HasPrefix(r.req.URL.Path, prefix) {
			n++
		}
	}
	return n
}

func (m *mockTransport) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r.req.URL.Path)
	}
	return out
}

// newTestClient wires a Client to the mock transport and a cache sharing the fixed clock.
func newTestClient(t *testing.T, transport *mockTransport) (*Client, *auth.MemoryCache) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	cache := auth.NewMemoryCacheWithClock(clock)
	c := New("CLIENT", "SECRET",
		WithBaseURL("https://api.example.test"),
		WithHTTPClient(transport),
		WithTokenCache(cache),
		WithClock(clock),
	)
	return c, cache
}

// seedToken stores a token issued at fixedNow.
func seedToken(cache *auth.MemoryCache, expiresIn int64) {
	cache.Set(auth.AccessToken{AccessToken: "TOKEN", ExpiresIn: expiresIn, TokenType: "TYPE", IssuedAt: fixedNow})
}
