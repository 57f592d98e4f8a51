// Package oneforgeapi provides a thin 1Forge FX API client used for API-key
// verification probes.
package oneforgeapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
)

const defaultBaseURL = "https://api.1forge.com"

// Client issues requests against the 1Forge quote API. Authentication is a
// query-parameter API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client with the given API key. Pass an empty baseURL to
// use the production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Quotes fetches quotes for the given comma-separated pairs
// (GET /quotes?pairs=...).
func (c *Client) Quotes(ctx context.Context, pairs string) (int, []byte, error) {
	q := url.Values{}
	q.Set("pairs", pairs)
	return c.get(ctx, "/quotes", q)
}

// MarketStatus reports whether the FX market is open
// (GET /market_status).
func (c *Client) MarketStatus(ctx context.Context) (int, []byte, error) {
	return c.get(ctx, "/market_status", url.Values{})
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (int, []byte, error) {
	q.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, errors.Wrap(err, "read response")
	}
	return resp.StatusCode, body, nil
}
