package cli

import (
	"context"
	"fmt"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/store"
)

// tokenStore is the backend contract the CLI needs: persist after a flow,
// load before a verify.
type tokenStore interface {
	oauth.TokenStore
	Load(ctx context.Context) (*oauth.TokenSet, error)
}

// buildStore selects the token backend. env writes into the provider's dotenv
// file, json keeps a shared tokens file, db upserts encrypted rows into the
// credentials database.
func buildStore(ctx context.Context, backend string, cfg *config.Config, provider, envFile, tokenFile string) (tokenStore, error) {
	switch backend {
	case "env":
		return &store.EnvFileStore{Path: envFile}, nil
	case "json":
		return &store.JSONFileStore{Path: tokenFile, Provider: provider}, nil
	case "db":
		got, err := cfg.Require("database store", "CREDENTIALS_DB_URL")
		if err != nil {
			return nil, err
		}
		key, err := store.LoadEncryptionKey(cfg.Get("CREDENTIAL_ENCRYPTION_KEY"))
		if err != nil {
			return nil, err
		}
		db, err := store.Open(ctx, got["CREDENTIALS_DB_URL"])
		if err != nil {
			return nil, err
		}
		return &store.DBStore{
			DB:       db,
			Key:      key,
			UserID:   cfg.GetDefault("APIPROBE_USER_ID", "local"),
			Provider: provider,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want env, json or db)", backend)
	}
}
