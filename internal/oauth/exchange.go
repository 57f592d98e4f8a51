package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ClientAuthForm puts client_id/client_secret in the POST body.
	ClientAuthForm = "form"
	// ClientAuthBasic sends them as an Authorization: Basic header.
	ClientAuthBasic = "basic"

	exchangeTimeout = 15 * time.Second
)

// ExchangeError is a vendor token-endpoint rejection (invalid_grant,
// invalid_client, redirect_uri_mismatch, ...). Authorization codes are
// single-use, so these are terminal for the run; the payload is surfaced
// verbatim for the operator.
type ExchangeError struct {
	StatusCode  int
	Code        string
	Description string
	Body        string
}

func (e *ExchangeError) Error() string {
	if e.Code != "" {
		if e.Description != "" {
			return fmt.Sprintf("token endpoint rejected the request: %s - %s (status %d)", e.Code, e.Description, e.StatusCode)
		}
		return fmt.Sprintf("token endpoint rejected the request: %s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("token endpoint rejected the request: status %d: %s", e.StatusCode, e.Body)
}

// Exchanger posts authorization codes and refresh tokens to a vendor token
// endpoint.
type Exchanger struct {
	Endpoints    Endpoints
	ClientID     string
	ClientSecret string
	RedirectURI  string

	client *http.Client
}

// NewExchanger creates an Exchanger with a bounded-timeout HTTP client.
func NewExchanger(ep Endpoints, clientID, clientSecret, redirectURI string) *Exchanger {
	return &Exchanger{
		Endpoints:    ep,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		client:       &http.Client{Timeout: exchangeTimeout},
	}
}

// Exchange swaps a single-use authorization code for a TokenSet. The
// redirect_uri must be byte-identical to the one in the authorization URL;
// vendors reject mismatches.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", e.RedirectURI)
	return e.post(ctx, form)
}

// Refresh obtains a fresh TokenSet from a refresh token. When the vendor does
// not rotate refresh tokens the stored one is carried forward.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	ts, err := e.post(ctx, form)
	if err != nil {
		return nil, err
	}
	if ts.RefreshToken == "" && !e.Endpoints.RotatesRefreshToken {
		ts.RefreshToken = refreshToken
	}
	return ts, nil
}

func (e *Exchanger) post(ctx context.Context, form url.Values) (*TokenSet, error) {
	if e.Endpoints.ClientAuth != ClientAuthBasic {
		form.Set("client_id", e.ClientID)
		form.Set("client_secret", e.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if e.Endpoints.ClientAuth == ClientAuthBasic {
		req.SetBasicAuth(e.ClientID, e.ClientSecret)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		exErr := &ExchangeError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		var payload struct {
			Error string `json:"error"`
			Desc  string `json:"error_description"`
		}
		if json.Unmarshal(body, &payload) == nil {
			exErr.Code = payload.Error
			exErr.Description = payload.Desc
		}
		return nil, exErr
	}

	var ts TokenSet
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if ts.AccessToken == "" {
		return nil, fmt.Errorf("token response contains no access_token")
	}
	if ts.ExpiresIn > 0 {
		ts.ExpiresAt = time.Now().Unix() + ts.ExpiresIn
	}
	return &ts, nil
}
