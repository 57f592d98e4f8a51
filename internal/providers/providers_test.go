package providers

import (
	"testing"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/verify"
)

type fakeProvider struct {
	name string
}

func (p *fakeProvider) Name() string            { return p.name }
func (p *fakeProvider) Description() string     { return "fake" }
func (p *fakeProvider) SupportsLogin() bool     { return false }
func (p *fakeProvider) DefaultScopes() []string { return nil }
func (p *fakeProvider) Endpoints(cfg *config.Config) (oauth.Endpoints, error) {
	return oauth.Endpoints{}, nil
}
func (p *fakeProvider) Probes(cfg *config.Config) ([]verify.Probe, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"zzz", "aaa", "mmm"} {
		Register(&fakeProvider{name: name})
	}

	got, ok := Get("aaa")
	if !ok {
		t.Fatal("registered provider not found")
	}
	if got.Name() != "aaa" {
		t.Errorf("Name = %q", got.Name())
	}
	if _, ok := Get("missing"); ok {
		t.Error("unregistered provider should not be found")
	}

	names := List()
	var prev string
	found := 0
	for _, n := range names {
		if prev != "" && n < prev {
			t.Errorf("List not sorted: %v", names)
			break
		}
		prev = n
		if n == "aaa" || n == "mmm" || n == "zzz" {
			found++
		}
	}
	if found != 3 {
		t.Errorf("List missing registered providers: %v", names)
	}
}
