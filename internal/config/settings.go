package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProviderSettings are per-provider overrides from apiprobe.toml.
type ProviderSettings struct {
	Scopes  []string `toml:"scopes"`
	EnvFile string   `toml:"env_file"`
}

// Settings is the optional apiprobe.toml configuration file.
type Settings struct {
	CallbackPort int                         `toml:"callback_port"`
	CallbackPath string                      `toml:"callback_path"`
	EnvDir       string                      `toml:"env_dir"`
	Providers    map[string]ProviderSettings `toml:"providers"`
}

const (
	defaultCallbackPort = 3000
	defaultCallbackPath = "/auth/callback"
)

// LoadSettings reads the TOML settings file. A missing file returns defaults
// without error; environment variables are not consulted here (the dotenv
// overlay in Load covers credentials).
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return Settings{}, err
		}
	} else if !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if s.CallbackPort == 0 {
		s.CallbackPort = defaultCallbackPort
	}
	if s.CallbackPath == "" {
		s.CallbackPath = defaultCallbackPath
	}
	if s.EnvDir == "" {
		s.EnvDir = "."
	}
	return s, nil
}

// EnvFileFor returns the dotenv path used for a provider's credentials and
// persisted tokens: the per-provider override when set, otherwise
// <env_dir>/.env.<provider>.
func (s Settings) EnvFileFor(provider string) string {
	if ps, ok := s.Providers[provider]; ok && ps.EnvFile != "" {
		return ps.EnvFile
	}
	return filepath.Join(s.EnvDir, ".env."+provider)
}

// ScopesFor returns the configured scope override for a provider, or nil when
// the provider default should be used.
func (s Settings) ScopesFor(provider string) []string {
	if ps, ok := s.Providers[provider]; ok && len(ps.Scopes) > 0 {
		return ps.Scopes
	}
	return nil
}
