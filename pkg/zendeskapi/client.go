// Package zendeskapi provides a thin Zendesk Support API client used for
// token verification probes.
package zendeskapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// Client issues authenticated requests against a Zendesk subdomain.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for https://<subdomain>.zendesk.com.
func NewClient(subdomain, token string) *Client {
	return NewClientWithBase(fmt.Sprintf("https://%s.zendesk.com", subdomain), token)
}

// NewClientWithBase creates a client against an explicit base URL. Used with
// httptest servers.
func NewClientWithBase(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Me fetches the authenticated user (GET /api/v2/users/me).
func (c *Client) Me(ctx context.Context) (int, []byte, error) {
	return c.get(ctx, "/api/v2/users/me")
}

// Tickets fetches a single ticket page (GET /api/v2/tickets?page[size]=1).
func (c *Client) Tickets(ctx context.Context) (int, []byte, error) {
	return c.get(ctx, "/api/v2/tickets?page[size]=1")
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
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
