// Package googleapi provides a thin Google Workspace API client used for
// token verification probes. This package is shared by the Drive, Calendar
// and Gmail probes.
package googleapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

const (
	driveAPIBase    = "https://www.googleapis.com/drive/v3"
	calendarAPIBase = "https://www.googleapis.com/calendar/v3"
	gmailAPIBase    = "https://gmail.googleapis.com/gmail/v1"
)

// Client issues authenticated requests against Google Workspace APIs.
type Client struct {
	token      string
	httpClient *http.Client

	// baseOverride replaces every API base URL; set by tests.
	baseOverride string
}

// NewClient creates a client with the given access token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBase creates a client whose requests all go to base. Used with
// httptest servers.
func NewClientWithBase(token, base string) *Client {
	c := NewClient(token)
	c.baseOverride = base
	return c
}

// DriveAbout fetches the Drive user summary (GET /about?fields=user).
func (c *Client) DriveAbout(ctx context.Context) (int, []byte, error) {
	return c.get(ctx, c.base(driveAPIBase)+"/about?fields=user")
}

// CalendarList fetches the first page of the user's calendar list.
func (c *Client) CalendarList(ctx context.Context) (int, []byte, error) {
	return c.get(ctx, c.base(calendarAPIBase)+"/users/me/calendarList?maxResults=1")
}

// GmailProfile fetches the Gmail profile of the authorized account.
func (c *Client) GmailProfile(ctx context.Context) (int, []byte, error) {
	return c.get(ctx, c.base(gmailAPIBase)+"/users/me/profile")
}

func (c *Client) base(def string) string {
	if c.baseOverride != "" {
		return c.baseOverride
	}
	return def
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
