// Package oneforge implements the verify-only 1Forge FX provider. 1Forge
// authenticates with a static API key passed as a query parameter.
package oneforge

import (
	"context"
	"fmt"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
	"apiprobe/pkg/oneforgeapi"
)

// OneForgeProvider implements the Provider interface for 1Forge.
type OneForgeProvider struct{}

func New() *OneForgeProvider { return &OneForgeProvider{} }

func (p *OneForgeProvider) Name() string        { return "oneforge" }
func (p *OneForgeProvider) Description() string { return "1Forge FX quotes (verify-only)" }
func (p *OneForgeProvider) SupportsLogin() bool { return false }

func (p *OneForgeProvider) Endpoints(cfg *config.Config) (oauth.Endpoints, error) {
	return oauth.Endpoints{}, fmt.Errorf("oneforge is verify-only: authentication uses a static API key")
}

func (p *OneForgeProvider) DefaultScopes() []string { return nil }

func (p *OneForgeProvider) Probes(cfg *config.Config) ([]verify.Probe, error) {
	got, err := cfg.Require("oneforge configuration", "ONEFORGE_API_KEY")
	if err != nil {
		return nil, err
	}
	client := oneforgeapi.NewClient(got["ONEFORGE_API_KEY"], cfg.Get("ONEFORGE_API_BASE"))
	return []verify.Probe{
		{
			Name: "quotes",
			Do: func(ctx context.Context, _ string) (int, []byte, error) {
				return client.Quotes(ctx, "EURUSD")
			},
		},
		{
			Name:   "market_status",
			Fields: []string{"market_is_open"},
			Do: func(ctx context.Context, _ string) (int, []byte, error) {
				return client.MarketStatus(ctx)
			},
		},
	}, nil
}
