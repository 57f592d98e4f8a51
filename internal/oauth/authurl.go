package oauth

import (
	"fmt"
	"net/url"
	"strings"
)

// AuthRequest is the input to BuildAuthURL. Constructed fresh per run.
type AuthRequest struct {
	BaseURL     string
	ClientID    string
	RedirectURI string
	Scopes      []string
	State       string
	Extra       map[string]string
}

// BuildAuthURL constructs the vendor authorization URL: response_type=code,
// client_id, redirect_uri, the scope list joined with a single space, state,
// and any vendor-specific extras. Pure function of its inputs.
func BuildAuthURL(req AuthRequest) (string, error) {
	if req.BaseURL == "" {
		return "", fmt.Errorf("authorization URL is empty")
	}
	if req.ClientID == "" {
		return "", fmt.Errorf("client_id is empty")
	}
	u, err := url.Parse(req.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorization URL: %w", err)
	}

	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", req.ClientID)
	q.Set("redirect_uri", req.RedirectURI)
	if len(req.Scopes) > 0 {
		q.Set("scope", strings.Join(req.Scopes, " "))
	}
	if req.State != "" {
		q.Set("state", req.State)
	}
	for k, v := range req.Extra {
		if k == "" {
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
