// Package onepassword implements the verify-only 1Password Events API
// provider. Events API tokens are issued in the 1Password console, not via an
// OAuth consent flow.
package onepassword

import (
	"context"
	"fmt"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
	"apiprobe/pkg/onepasswordapi"
)

// OnePasswordProvider implements the Provider interface for the Events API.
type OnePasswordProvider struct{}

func New() *OnePasswordProvider { return &OnePasswordProvider{} }

func (p *OnePasswordProvider) Name() string        { return "onepassword" }
func (p *OnePasswordProvider) Description() string { return "1Password Events API (verify-only)" }
func (p *OnePasswordProvider) SupportsLogin() bool { return false }

func (p *OnePasswordProvider) Endpoints(cfg *config.Config) (oauth.Endpoints, error) {
	return oauth.Endpoints{}, fmt.Errorf("onepassword is verify-only: Events API tokens are issued in the 1Password console")
}

func (p *OnePasswordProvider) DefaultScopes() []string { return nil }

func (p *OnePasswordProvider) Probes(cfg *config.Config) ([]verify.Probe, error) {
	got, err := cfg.Require("onepassword configuration", "ONEPASSWORD_EVENTS_TOKEN")
	if err != nil {
		return nil, err
	}
	client := onepasswordapi.NewClient(got["ONEPASSWORD_EVENTS_TOKEN"], cfg.Get("ONEPASSWORD_API_BASE"))
	return []verify.Probe{
		{
			Name:   "auth.introspect",
			Fields: []string{"features"},
			Do: func(ctx context.Context, _ string) (int, []byte, error) {
				return client.Introspect(ctx)
			},
		},
		{
			Name:   "signinattempts",
			Fields: []string{"items"},
			Do: func(ctx context.Context, _ string) (int, []byte, error) {
				return client.SignInAttempts(ctx)
			},
		},
	}, nil
}
