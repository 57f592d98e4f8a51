// Package store persists obtained token sets for reuse by later runs and by
// unrelated scripts. All backends share one contract: re-running the flow
// overwrites prior tokens without leaving duplicate or stale entries.
package store

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
)

// Dotenv keys written by EnvFileStore.
const (
	KeyAccessToken  = "ACCESS_TOKEN"
	KeyRefreshToken = "REFRESH_TOKEN"
	KeyTokenType    = "TOKEN_TYPE"
	KeyExpiresAt    = "EXPIRES_AT"
	KeyAuthStatus   = "AUTH_STATUS"
)

// EnvFileStore writes tokens into a dotenv-style file, updating matching keys
// in place and preserving unrelated lines.
type EnvFileStore struct {
	Path string
}

func (s *EnvFileStore) Save(ctx context.Context, ts *oauth.TokenSet) error {
	set := map[string]string{
		KeyAccessToken: ts.AccessToken,
		KeyTokenType:   ts.TokenType,
		KeyAuthStatus:  "ok",
	}
	var unset []string
	if ts.RefreshToken != "" {
		set[KeyRefreshToken] = ts.RefreshToken
	} else {
		unset = append(unset, KeyRefreshToken)
	}
	if ts.ExpiresAt > 0 {
		set[KeyExpiresAt] = strconv.FormatInt(ts.ExpiresAt, 10)
	} else {
		unset = append(unset, KeyExpiresAt)
	}
	if err := config.UpsertEnvFile(s.Path, set, unset); err != nil {
		return errors.Wrap(err, "update env file")
	}
	return nil
}

// Load reads a previously persisted TokenSet back from the env file. Returns
// nil when no ACCESS_TOKEN is present.
func (s *EnvFileStore) Load(ctx context.Context) (*oauth.TokenSet, error) {
	values, err := config.ParseEnvFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "read env file")
	}
	access := values[KeyAccessToken]
	if access == "" {
		return nil, nil
	}
	ts := &oauth.TokenSet{
		AccessToken:  access,
		RefreshToken: values[KeyRefreshToken],
		TokenType:    values[KeyTokenType],
	}
	if raw := values[KeyExpiresAt]; raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ts.ExpiresAt = n
		}
	}
	return ts, nil
}

// JSONFileStore keeps one JSON document per file mapping provider names to
// their token sets.
type JSONFileStore struct {
	Path     string
	Provider string
}

func (s *JSONFileStore) Save(ctx context.Context, ts *oauth.TokenSet) error {
	all, err := s.readAll()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(ts)
	if err != nil {
		return errors.Wrap(err, "marshal token set")
	}
	all[s.Provider] = raw

	var e jx.Encoder
	e.SetIdent(2)
	e.Obj(func(e *jx.Encoder) {
		for _, name := range sortedRawKeys(all) {
			e.Field(name, func(e *jx.Encoder) { e.Raw(jx.Raw(all[name])) })
		}
	})
	if err := os.WriteFile(s.Path, append(e.Bytes(), '\n'), 0600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	return nil
}

// Load returns the stored TokenSet for the provider, or nil when absent.
func (s *JSONFileStore) Load(ctx context.Context) (*oauth.TokenSet, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	raw, ok := all[s.Provider]
	if !ok {
		return nil, nil
	}
	var ts oauth.TokenSet
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, errors.Wrap(err, "decode token set")
	}
	return &ts, nil
}

func (s *JSONFileStore) readAll() (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return all, nil
		}
		return nil, errors.Wrap(err, "read token file")
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, errors.Wrap(err, "parse token file")
	}
	return all, nil
}

func sortedRawKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
