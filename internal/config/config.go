package config

import (
	"fmt"
	"os"
	"strings"
)

// ClientCredentials is the OAuth app configuration for one provider.
// Loaded once at process start; immutable afterwards.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Config holds every key/value visible to the current run: the provider's
// dotenv file overlaid with the process environment (environment wins).
type Config struct {
	values map[string]string
}

// MissingKeysError reports exactly which required keys were absent, so the
// operator can fix the credential file in one pass.
type MissingKeysError struct {
	Source string
	Keys   []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing required configuration key(s) in %s: %s", e.Source, strings.Join(e.Keys, ", "))
}

// Load reads the dotenv file at path (missing file is fine) and overlays the
// process environment on top of it.
func Load(path string) (*Config, error) {
	values, err := ParseEnvFile(path)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]string)
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && v != "" {
			values[k] = v
		}
	}
	return &Config{values: values}, nil
}

// Get returns the value for key, or "" when unset.
func (c *Config) Get(key string) string { return c.values[key] }

// GetDefault returns the value for key, or def when unset.
func (c *Config) GetDefault(key, def string) string {
	if v := c.values[key]; v != "" {
		return v
	}
	return def
}

// Require returns the values for keys, failing with a MissingKeysError that
// enumerates every absent key rather than just the first one.
func (c *Config) Require(source string, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		v := c.values[k]
		if v == "" {
			missing = append(missing, k)
			continue
		}
		out[k] = v
	}
	if len(missing) > 0 {
		return nil, &MissingKeysError{Source: source, Keys: missing}
	}
	return out, nil
}

// Credentials builds ClientCredentials for a provider from its prefixed keys
// (e.g. GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET). The redirect URI key is
// optional; callers fall back to the local callback listener address.
func (c *Config) Credentials(provider string) (ClientCredentials, error) {
	prefix := strings.ToUpper(provider) + "_"
	got, err := c.Require("credentials for "+provider, prefix+"CLIENT_ID", prefix+"CLIENT_SECRET")
	if err != nil {
		return ClientCredentials{}, err
	}
	return ClientCredentials{
		ClientID:     got[prefix+"CLIENT_ID"],
		ClientSecret: got[prefix+"CLIENT_SECRET"],
		RedirectURI:  c.Get(prefix + "REDIRECT_URI"),
	}, nil
}
