package oauth

import (
	"context"
	"time"
)

// TokenSet is the result of a successful token exchange or refresh.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`

	// ExpiresAt is computed locally from ExpiresIn at exchange time.
	// Zero means the vendor reported no expiry.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// tokenRefreshBuffer is how long before expiry a token counts as expiring.
const tokenRefreshBuffer = 5 * time.Minute

// NeedsRefresh reports whether the access token is expired or expiring soon.
func (ts *TokenSet) NeedsRefresh(now time.Time) bool {
	if ts.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= ts.ExpiresAt-int64(tokenRefreshBuffer.Seconds())
}

// CallbackResult is the one-shot message extracted from the inbound redirect.
type CallbackResult struct {
	Code  string
	State string
	Err   string
	Desc  string
}

// Endpoints describes a vendor's OAuth 2.0 endpoints and quirks.
type Endpoints struct {
	AuthURL  string
	TokenURL string

	// AuthParams are vendor-specific extras for the authorization URL
	// (access_type, prompt, ...), passed through untouched.
	AuthParams map[string]string

	// ClientAuth selects how the token endpoint authenticates the client:
	// "form" (credentials in the POST body) or "basic".
	ClientAuth string

	// RotatesRefreshToken marks vendors that issue a new refresh token on
	// every refresh grant.
	RotatesRefreshToken bool
}

// TokenStore persists a TokenSet for later runs. Implementations live in
// internal/store; the flow only needs Save.
type TokenStore interface {
	Save(ctx context.Context, ts *TokenSet) error
}
