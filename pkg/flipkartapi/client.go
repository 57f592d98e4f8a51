// Package flipkartapi provides a thin Flipkart Affiliate API client used for
// header-token verification probes.
package flipkartapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

const defaultBaseURL = "https://affiliate-api.flipkart.net"

// Client issues requests authenticated with the affiliate tracking-id/token
// header pair.
type Client struct {
	baseURL    string
	trackingID string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given affiliate account. Pass an empty
// baseURL to use the production endpoint.
func NewClient(trackingID, token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		trackingID: trackingID,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// APIDirectory fetches the affiliate API listing for the account
// (GET /affiliate/api/<tracking-id>.json). It is the cheapest call that
// exercises the credential pair.
func (c *Client) APIDirectory(ctx context.Context) (int, []byte, error) {
	endpoint := fmt.Sprintf("%s/affiliate/api/%s.json", c.baseURL, c.trackingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Fk-Affiliate-Id", c.trackingID)
	req.Header.Set("Fk-Affiliate-Token", c.token)
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
