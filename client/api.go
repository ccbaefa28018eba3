package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// --- HTTP Helper Functions (kept private) ---

// endpoint joins the base URL, a fixed path and escaped path segments, then appends the encoded query.
func (c *Client) endpoint(path string, query url.Values, segments ...string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", NewMessage(fmt.Sprintf("invalid request URL: bad base URL %q", c.baseURL))
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(base.String(), "/"))
	b.WriteString(path)
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return "", NewMessage(fmt.Sprintf("invalid request URL: empty path segment in %s", path))
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String(), nil
}

// createRequest creates an HTTP request carrying the bearer token and JSON accept header.
func createRequest(ctx context.Context, method, urlStr, accessToken string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("Failed to create HTTP request object")
		return nil, NewMessage(fmt.Sprintf("invalid request URL: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send dispatches req and returns the raw body. The status code is only logged; callers decide
// from the payload.
func (c *Client) send(req *http.Request) ([]byte, error) {
	logger := log.With().
		Str("request_id", uuid.NewString()).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Logger()

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, Wrap(err)
		}
	}

	logger.Debug().Msg("Sending HTTP request")
	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		logger.Error().Err(err).Msg("HTTP request failed")
		return nil, Wrap(err)
	}
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		logger.Warn().Msg("HTTP response carried no body")
		return nil, MissingResponse()
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, Wrap(err)
	}
	if len(body) == 0 {
		logger.Warn().Int("status", resp.StatusCode).Msg("HTTP response body was empty")
		return nil, MissingResponse()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Int("status", resp.StatusCode).Msg("HTTP request returned non-OK status")
	} else {
		logger.Debug().Int("status", resp.StatusCode).Msg("HTTP request successful")
	}
	return body, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, err
	}
	return body, nil
}

// validator is implemented by wire types that carry schema rules beyond what encoding/json checks.
type validator interface {
	validate() error
}

// decode unmarshals body into a T, mapping any mismatch to a DecodeFailure.
func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		log.Error().Err(err).Str("body_preview", string(body[:min(len(body), 200)])).Msg("Failed to parse response JSON")
		return v, DecodeFailure(err)
	}
	if val, ok := any(&v).(validator); ok {
		if err := val.validate(); err != nil {
			log.Error().Err(err).Msg("Response JSON does not match the expected schema")
			return v, DecodeFailure(err)
		}
	}
	return v, nil
}
