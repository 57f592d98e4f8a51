// Package google implements the Google Workspace provider: authorization-code
// OAuth against accounts.google.com and verification probes for Drive,
// Calendar and Gmail.
package google

import (
	"context"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
	"apiprobe/pkg/googleapi"
)

const (
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// GoogleProvider implements the Provider interface for Google Workspace.
type GoogleProvider struct{}

func New() *GoogleProvider { return &GoogleProvider{} }

func (p *GoogleProvider) Name() string { return "google" }
func (p *GoogleProvider) Description() string {
	return "Google Workspace APIs (Drive, Calendar, Gmail)"
}
func (p *GoogleProvider) SupportsLogin() bool { return true }

func (p *GoogleProvider) Endpoints(cfg *config.Config) (oauth.Endpoints, error) {
	return oauth.Endpoints{
		AuthURL:  cfg.GetDefault("GOOGLE_AUTH_URL", defaultAuthURL),
		TokenURL: cfg.GetDefault("GOOGLE_TOKEN_URL", defaultTokenURL),
		// offline + consent forces Google to issue a refresh token even
		// when the user authorized this client before.
		AuthParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
		ClientAuth: oauth.ClientAuthForm,
	}, nil
}

func (p *GoogleProvider) DefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/drive.metadata.readonly",
		"https://www.googleapis.com/auth/calendar.readonly",
		"https://www.googleapis.com/auth/gmail.readonly",
		"https://www.googleapis.com/auth/userinfo.email",
	}
}

// Identity reports the authorized account's email from the id_token returned
// alongside the access token (requires the userinfo.email scope).
func (p *GoogleProvider) Identity(ts *oauth.TokenSet) (string, error) {
	if ts.IDToken == "" {
		return "", nil
	}
	return IDTokenEmail(ts.IDToken)
}

func (p *GoogleProvider) Probes(cfg *config.Config) ([]verify.Probe, error) {
	base := cfg.Get("GOOGLE_API_BASE")
	client := func(token string) *googleapi.Client {
		if base != "" {
			return googleapi.NewClientWithBase(token, base)
		}
		return googleapi.NewClient(token)
	}
	return []verify.Probe{
		{
			Name:   "drive.about",
			Fields: []string{"user"},
			Do: func(ctx context.Context, token string) (int, []byte, error) {
				return client(token).DriveAbout(ctx)
			},
		},
		{
			Name:   "calendar.calendarList",
			Fields: []string{"items"},
			Do: func(ctx context.Context, token string) (int, []byte, error) {
				return client(token).CalendarList(ctx)
			},
		},
		{
			Name:   "gmail.profile",
			Fields: []string{"emailAddress"},
			Do: func(ctx context.Context, token string) (int, []byte, error) {
				return client(token).GmailProfile(ctx)
			},
		},
	}, nil
}
