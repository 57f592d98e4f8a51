// Package onepasswordapi provides a thin 1Password Events API client used for
// bearer-token verification probes.
package onepasswordapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

const defaultBaseURL = "https://events.1password.com"

// Client issues authenticated requests against the Events API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client with the given events bearer token. Pass an
// empty baseURL to use the production endpoint.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Introspect reports which Events API features the token grants
// (GET /api/auth/introspect).
func (c *Client) Introspect(ctx context.Context) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, "/api/auth/introspect", "")
}

// SignInAttempts fetches a single sign-in attempt
// (POST /api/v1/signinattempts).
func (c *Client) SignInAttempts(ctx context.Context) (int, []byte, error) {
	return c.do(ctx, http.MethodPost, "/api/v1/signinattempts", `{"limit":1}`)
}

func (c *Client) do(ctx context.Context, method, path, body string) (int, []byte, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, errors.Wrap(err, "read response")
	}
	return resp.StatusCode, raw, nil
}
