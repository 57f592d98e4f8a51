package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"apiprobe/internal/config"
	"apiprobe/internal/oauth"
	"apiprobe/internal/providers"
	"apiprobe/internal/verify"
)

type verifyOptions struct {
	envFile      string
	token        string
	storeBackend string
	tokenFile    string
	jsonOut      bool
}

func newVerifyCmd() *cobra.Command {
	var opts verifyOptions
	cmd := &cobra.Command{
		Use:   "verify <provider>",
		Short: "Probe a provider with the stored credential and report token health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), args[0], opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.envFile, "env-file", "", "credential dotenv file (default <env_dir>/.env.<provider>)")
	fs.StringVar(&opts.token, "token", "", "access token override (skips the store)")
	fs.StringVar(&opts.storeBackend, "store", "env", "token store backend: env, json or db")
	fs.StringVar(&opts.tokenFile, "token-file", "tokens.json", "token file for the json store")
	fs.BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	return cmd
}

func runVerify(ctx context.Context, name string, opts verifyOptions) error {
	p, ok := providers.Get(name)
	if !ok {
		return fmt.Errorf("unknown provider %q (see 'apiprobe providers')", name)
	}

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	envFile := opts.envFile
	if envFile == "" {
		envFile = settings.EnvFileFor(name)
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	token := opts.token
	if token == "" && p.SupportsLogin() {
		token, err = storedToken(ctx, name, p, cfg, envFile, opts)
		if err != nil {
			return err
		}
	}

	probes, err := p.Probes(cfg)
	if err != nil {
		return err
	}
	results := verify.Run(ctx, name, probes, token)

	if opts.jsonOut {
		os.Stdout.Write(append(verify.EncodeReport(name, results), '\n'))
	}
	if n := verify.ScopeWarnings(results); n > 0 {
		log.Printf("[verify] %d probe(s) report insufficient scope; re-run login with a broader --scope list", n)
	}
	for _, r := range results {
		if r.Status == verify.StatusUnauthorized {
			log.Printf("[verify] %s token is invalid or expired; run 'apiprobe login %s'", name, name)
			break
		}
	}
	return nil
}

// storedToken loads the persisted access token, refreshing it first when it
// is expired or expiring and a refresh token is on hand.
func storedToken(ctx context.Context, name string, p providers.Provider, cfg *config.Config, envFile string, opts verifyOptions) (string, error) {
	st, err := buildStore(ctx, opts.storeBackend, cfg, name, envFile, opts.tokenFile)
	if err != nil {
		return "", err
	}
	ts, err := st.Load(ctx)
	if err != nil {
		return "", err
	}
	if ts == nil {
		return "", fmt.Errorf("no stored token for %s; run 'apiprobe login %s' or pass --token", name, name)
	}
	if !ts.NeedsRefresh(time.Now()) || ts.RefreshToken == "" {
		return ts.AccessToken, nil
	}

	creds, err := cfg.Credentials(name)
	if err != nil {
		log.Printf("[verify] cannot refresh without client credentials, probing with the stored token: %v", err)
		return ts.AccessToken, nil
	}
	endpoints, err := p.Endpoints(cfg)
	if err != nil {
		return "", err
	}
	log.Printf("[verify] access token for %s is expiring, refreshing", name)
	if err := runRefresh(ctx, name, creds, endpoints, st, func(context.Context, *oauth.TokenSet) {}); err != nil {
		log.Printf("[verify] refresh failed, probing with the stored token: %v", err)
		return ts.AccessToken, nil
	}
	refreshed, err := st.Load(ctx)
	if err != nil || refreshed == nil {
		log.Printf("[verify] could not reload refreshed token, probing with the stored token")
		return ts.AccessToken, nil
	}
	return refreshed.AccessToken, nil
}
