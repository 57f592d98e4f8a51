// Package flipkart implements the verify-only Flipkart Affiliate provider.
// The affiliate API authenticates with a tracking-id/token header pair.
package flipkart

import (
	"context"
	"fmt"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
	"apiprobe/pkg/flipkartapi"
)

// FlipkartProvider implements the Provider interface for the affiliate API.
type FlipkartProvider struct{}

func New() *FlipkartProvider { return &FlipkartProvider{} }

func (p *FlipkartProvider) Name() string        { return "flipkart" }
func (p *FlipkartProvider) Description() string { return "Flipkart Affiliate API (verify-only)" }
func (p *FlipkartProvider) SupportsLogin() bool { return false }

func (p *FlipkartProvider) Endpoints(cfg *config.Config) (oauth.Endpoints, error) {
	return oauth.Endpoints{}, fmt.Errorf("flipkart is verify-only: authentication uses affiliate headers")
}

func (p *FlipkartProvider) DefaultScopes() []string { return nil }

func (p *FlipkartProvider) Probes(cfg *config.Config) ([]verify.Probe, error) {
	got, err := cfg.Require("flipkart configuration", "FLIPKART_TRACKING_ID", "FLIPKART_TOKEN")
	if err != nil {
		return nil, err
	}
	client := flipkartapi.NewClient(got["FLIPKART_TRACKING_ID"], got["FLIPKART_TOKEN"], cfg.Get("FLIPKART_API_BASE"))
	return []verify.Probe{
		{
			Name:   "api.directory",
			Fields: []string{"apiGroups"},
			Do: func(ctx context.Context, _ string) (int, []byte, error) {
				return client.APIDirectory(ctx)
			},
		},
	}, nil
}
