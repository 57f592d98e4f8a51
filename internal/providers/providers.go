// Package providers holds the catalog of vendor integrations. Each provider
// registers itself at startup and exposes its OAuth endpoints (when it has
// any) and its verification probes.
package providers

import (
	"sort"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
)

// Provider is one vendor integration.
type Provider interface {
	Name() string
	Description() string

	// SupportsLogin reports whether the provider uses the OAuth
	// authorization-code flow. Key-based vendors return false and are
	// verify-only.
	SupportsLogin() bool

	// Endpoints returns the vendor's OAuth endpoints. Configuration the
	// endpoints depend on (e.g. a Zendesk subdomain) is read from cfg;
	// missing keys surface as a config.MissingKeysError.
	Endpoints(cfg *config.Config) (oauth.Endpoints, error)

	// DefaultScopes is the scope list requested when the operator supplies
	// none.
	DefaultScopes() []string

	// Probes builds the provider's verification probes. Key-based
	// providers close over their credentials from cfg and ignore the
	// token passed at run time.
	Probes(cfg *config.Config) ([]verify.Probe, error)
}

var registry = make(map[string]Provider)

// Register adds a provider to the registry.
func Register(p Provider) {
	registry[p.Name()] = p
}

// Get returns a provider by name.
func Get(name string) (Provider, bool) {
	p, ok := registry[name]
	return p, ok
}

// List returns all registered provider names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
