// Package zendesk implements the Zendesk provider: authorization-code OAuth
// against the account subdomain and Support API verification probes.
package zendesk

import (
	"context"
	"fmt"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
	"apiprobe/pkg/zendeskapi"
)

// ZendeskProvider implements the Provider interface for Zendesk Support.
type ZendeskProvider struct{}

func New() *ZendeskProvider { return &ZendeskProvider{} }

func (p *ZendeskProvider) Name() string        { return "zendesk" }
func (p *ZendeskProvider) Description() string { return "Zendesk Support API" }
func (p *ZendeskProvider) SupportsLogin() bool { return true }

func (p *ZendeskProvider) Endpoints(cfg *config.Config) (oauth.Endpoints, error) {
	got, err := cfg.Require("zendesk configuration", "ZENDESK_SUBDOMAIN")
	if err != nil {
		return oauth.Endpoints{}, err
	}
	subdomain := got["ZENDESK_SUBDOMAIN"]
	return oauth.Endpoints{
		AuthURL:    cfg.GetDefault("ZENDESK_AUTH_URL", fmt.Sprintf("https://%s.zendesk.com/oauth/authorizations/new", subdomain)),
		TokenURL:   cfg.GetDefault("ZENDESK_TOKEN_URL", fmt.Sprintf("https://%s.zendesk.com/oauth/tokens", subdomain)),
		ClientAuth: oauth.ClientAuthForm,
	}, nil
}

func (p *ZendeskProvider) DefaultScopes() []string {
	return []string{"read"}
}

func (p *ZendeskProvider) Probes(cfg *config.Config) ([]verify.Probe, error) {
	got, err := cfg.Require("zendesk configuration", "ZENDESK_SUBDOMAIN")
	if err != nil {
		return nil, err
	}
	subdomain := got["ZENDESK_SUBDOMAIN"]
	base := cfg.Get("ZENDESK_API_BASE")
	client := func(token string) *zendeskapi.Client {
		if base != "" {
			return zendeskapi.NewClientWithBase(base, token)
		}
		return zendeskapi.NewClient(subdomain, token)
	}
	return []verify.Probe{
		{
			Name:   "users.me",
			Fields: []string{"user"},
			Do: func(ctx context.Context, token string) (int, []byte, error) {
				return client(token).Me(ctx)
			},
		},
		{
			Name:   "tickets.list",
			Fields: []string{"tickets"},
			Do: func(ctx context.Context, token string) (int, []byte, error) {
				return client(token).Tickets(ctx)
			},
		},
	}, nil
}
