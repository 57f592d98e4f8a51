package oauth

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("apiprobe/internal/oauth")

// Flow carries the state of a single OAuth run through the listener,
// exchanger, verifier and persister. One Flow per process run; discarded on
// completion.
type Flow struct {
	Provider     string
	ClientID     string
	ClientSecret string
	Endpoints    Endpoints
	Scopes       []string

	// RedirectURI defaults to http://localhost:<CallbackPort><CallbackPath>.
	RedirectURI  string
	CallbackPort int
	CallbackPath string

	// Timeout bounds the whole wait for the browser redirect.
	Timeout time.Duration

	// OpenBrowser opens the consent URL; nil means print-only.
	OpenBrowser func(url string) error

	// Verify annotates token health after the exchange. It must never fail
	// the run: insufficient scope is a warning, not an error.
	Verify func(ctx context.Context, ts *TokenSet)

	// Store persists the obtained TokenSet; nil skips persistence.
	Store TokenStore

	Pages PageRenderer
	Out   io.Writer
}

// Run executes the authorization-code flow end to end and returns the
// obtained TokenSet. Callers decide the process exit code from the error.
func (f *Flow) Run(ctx context.Context) (*TokenSet, error) {
	ctx, span := tracer.Start(ctx, "oauth.flow",
		trace.WithAttributes(attribute.String("provider", f.Provider)))
	defer span.End()

	state := uuid.NewString()
	redirectURI := f.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://localhost:%d%s", f.CallbackPort, f.CallbackPath)
	}

	authURL, err := BuildAuthURL(AuthRequest{
		BaseURL:     f.Endpoints.AuthURL,
		ClientID:    f.ClientID,
		RedirectURI: redirectURI,
		Scopes:      f.Scopes,
		State:       state,
		Extra:       f.Endpoints.AuthParams,
	})
	if err != nil {
		return nil, err
	}

	exchanger := NewExchanger(f.Endpoints, f.ClientID, f.ClientSecret, redirectURI)

	var tokens *TokenSet
	onCode := func(ctx context.Context, code string) error {
		exCtx, exSpan := tracer.Start(ctx, "oauth.exchange")
		ts, err := exchanger.Exchange(exCtx, code)
		exSpan.End()
		if err != nil {
			return err
		}
		log.Printf("[oauth] token obtained for %s (type=%s, expires_in=%d)", f.Provider, ts.TokenType, ts.ExpiresIn)

		if f.Verify != nil {
			vCtx, vSpan := tracer.Start(ctx, "oauth.verify")
			f.Verify(vCtx, ts)
			vSpan.End()
		}

		if f.Store != nil {
			pCtx, pSpan := tracer.Start(ctx, "oauth.persist")
			err := f.Store.Save(pCtx, ts)
			pSpan.End()
			if err != nil {
				return fmt.Errorf("failed to persist tokens: %w", err)
			}
			log.Printf("[oauth] tokens persisted for %s", f.Provider)
		}

		tokens = ts
		return nil
	}

	listener := NewListener(f.Provider, f.CallbackPort, f.CallbackPath, state, f.Pages, onCode)
	if err := listener.Start(); err != nil {
		return nil, err
	}

	fmt.Fprintf(f.Out, "Open this URL in your browser to authorize %s:\n\n  %s\n\n", f.Provider, authURL)
	if f.OpenBrowser != nil {
		if err := f.OpenBrowser(authURL); err != nil {
			log.Printf("[oauth] could not open browser: %v", err)
		}
	}

	waitCtx := ctx
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	if err := listener.Wait(waitCtx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return tokens, nil
}
