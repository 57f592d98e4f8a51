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
	"apiprobe/internal/observability"
	"apiprobe/internal/providers"
	"apiprobe/internal/verify"
)

type loginOptions struct {
	envFile      string
	scopes       []string
	noBrowser    bool
	callbackPort int
	callbackPath string
	timeout      time.Duration
	storeBackend string
	tokenFile    string
	refresh      bool
}

func newLoginCmd() *cobra.Command {
	var opts loginOptions
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Run the OAuth authorization-code flow for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), args[0], opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.envFile, "env-file", "", "credential dotenv file (default <env_dir>/.env.<provider>)")
	fs.StringSliceVar(&opts.scopes, "scope", nil, "scope override (repeatable)")
	fs.BoolVar(&opts.noBrowser, "no-browser", false, "print the consent URL instead of opening a browser")
	fs.IntVar(&opts.callbackPort, "callback-port", 0, "local callback port override")
	fs.StringVar(&opts.callbackPath, "callback-path", "", "local callback path override")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "how long to wait for the browser redirect")
	fs.StringVar(&opts.storeBackend, "store", "env", "token store backend: env, json or db")
	fs.StringVar(&opts.tokenFile, "token-file", "tokens.json", "token file for the json store")
	fs.BoolVar(&opts.refresh, "refresh", false, "use the stored refresh token instead of a new consent flow")
	return cmd
}

func runLogin(ctx context.Context, name string, opts loginOptions) error {
	p, ok := providers.Get(name)
	if !ok {
		return fmt.Errorf("unknown provider %q (see 'apiprobe providers')", name)
	}
	if !p.SupportsLogin() {
		return fmt.Errorf("%s does not use the OAuth authorization-code flow; set its key in the env file and run 'apiprobe verify %s'", name, name)
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

	creds, err := cfg.Credentials(name)
	if err != nil {
		return err
	}
	endpoints, err := p.Endpoints(cfg)
	if err != nil {
		return err
	}

	scopes := opts.scopes
	if len(scopes) == 0 {
		scopes = settings.ScopesFor(name)
	}
	if len(scopes) == 0 {
		scopes = p.DefaultScopes()
	}

	port := opts.callbackPort
	if port == 0 {
		port = settings.CallbackPort
	}
	path := opts.callbackPath
	if path == "" {
		path = settings.CallbackPath
	}

	st, err := buildStore(ctx, opts.storeBackend, cfg, name, envFile, opts.tokenFile)
	if err != nil {
		return err
	}

	verifyFn := func(ctx context.Context, ts *oauth.TokenSet) {
		if ident, ok := p.(interface {
			Identity(ts *oauth.TokenSet) (string, error)
		}); ok {
			if email, err := ident.Identity(ts); err != nil {
				log.Printf("[login] could not read identity from id_token: %v", err)
			} else if email != "" {
				log.Printf("[login] authorized as %s", email)
			}
		}
		probes, err := p.Probes(cfg)
		if err != nil {
			log.Printf("[login] skipping verification: %v", err)
			return
		}
		results := verify.Run(ctx, name, probes, ts.AccessToken)
		if n := verify.ScopeWarnings(results); n > 0 {
			log.Printf("[login] %d probe(s) report insufficient scope; re-run login with a broader --scope list", n)
		}
	}

	if opts.refresh {
		return runRefresh(ctx, name, creds, endpoints, st, verifyFn)
	}

	observability.LogFlowEvent(name, "flow_started", map[string]any{"scopes": scopes})
	flow := &oauth.Flow{
		Provider:     name,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoints:    endpoints,
		Scopes:       scopes,
		RedirectURI:  creds.RedirectURI,
		CallbackPort: port,
		CallbackPath: path,
		Timeout:      opts.timeout,
		Verify:       verifyFn,
		Store:        st,
		Pages:        oauth.HTMLPages{},
		Out:          os.Stdout,
	}
	if !opts.noBrowser {
		flow.OpenBrowser = openBrowser
	}

	ts, err := flow.Run(ctx)
	if err != nil {
		observability.LogFlowEvent(name, "flow_failed", map[string]any{"error": err.Error()})
		return err
	}
	observability.LogFlowEvent(name, "flow_succeeded", map[string]any{
		"has_refresh_token": ts.RefreshToken != "",
	})
	fmt.Printf("Authorization complete for %s.\n", name)
	return nil
}

// runRefresh exchanges the stored refresh token for a fresh access token and
// persists the result through the same store the flow would use.
func runRefresh(ctx context.Context, name string, creds config.ClientCredentials, endpoints oauth.Endpoints, st tokenStore, verifyFn func(context.Context, *oauth.TokenSet)) error {
	prev, err := st.Load(ctx)
	if err != nil {
		return err
	}
	if prev == nil || prev.RefreshToken == "" {
		return fmt.Errorf("no stored refresh token for %s; run 'apiprobe login %s' first", name, name)
	}

	exchanger := oauth.NewExchanger(endpoints, creds.ClientID, creds.ClientSecret, creds.RedirectURI)
	ts, err := exchanger.Refresh(ctx, prev.RefreshToken)
	if err != nil {
		observability.LogFlowEvent(name, "refresh_failed", map[string]any{"error": err.Error()})
		return err
	}
	verifyFn(ctx, ts)
	if err := st.Save(ctx, ts); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	observability.LogFlowEvent(name, "refresh_succeeded", nil)
	fmt.Printf("Token refreshed for %s.\n", name)
	return nil
}
