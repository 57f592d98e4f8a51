package oauth

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"
)

// State is the callback listener's lifecycle state. Terminal states are
// reached exactly once per run.
type State string

const (
	StateListening    State = "LISTENING"
	StateCodeReceived State = "CODE_RECEIVED"
	StateExchanging   State = "EXCHANGING"
	StateSucceeded    State = "SUCCEEDED"
	StateFailed       State = "FAILED"
	StateShuttingDown State = "SHUTTING_DOWN"
)

// DeniedError is a vendor redirect carrying an error parameter (user declined
// consent, misconfigured redirect URI). No tokens are persisted.
type DeniedError struct {
	Code        string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization denied: %s (%s)", e.Code, e.Description)
	}
	return "authorization denied: " + e.Code
}

// Listener is the short-lived local HTTP server that receives the vendor's
// redirect. It accepts exactly one effective callback: once a code or an
// error has been consumed, later requests get an "already completed" page.
type Listener struct {
	provider string
	port     int
	path     string
	expState string
	pages    PageRenderer

	// onCode runs the synchronous exchange (and whatever follows it) for
	// the single accepted authorization code.
	onCode func(ctx context.Context, code string) error

	mu    sync.Mutex
	state State

	srv  *http.Server
	ln   net.Listener
	done chan error
}

// NewListener builds a listener bound to localhost:port at path. expState is
// the state parameter issued with the authorization URL; callbacks carrying a
// different state are treated as malformed.
func NewListener(provider string, port int, path, expState string, pages PageRenderer, onCode func(ctx context.Context, code string) error) *Listener {
	if pages == nil {
		pages = HTMLPages{}
	}
	return &Listener{
		provider: provider,
		port:     port,
		path:     path,
		expState: expState,
		pages:    pages,
		onCode:   onCode,
		state:    StateListening,
		done:     make(chan error, 1),
	}
}

// Start binds the listener socket. A port already in use fails fast here, not
// after the operator has opened the consent screen.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", l.port))
	if err != nil {
		return fmt.Errorf("callback port %d unavailable: %w", l.port, err)
	}
	l.ln = ln

	mux := http.NewServeMux()
	// Go 1.21's ServeMux has no "GET /path" method patterns; enforce the
	// method restriction explicitly.
	mux.HandleFunc(l.path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		l.handleCallback(w, r)
	})

	l.srv = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[oauth] callback server error: %v", err)
		}
	}()
	return nil
}

// Wait blocks until the run reaches a terminal state or ctx expires, then
// shuts the listener down. The returned error is nil only for SUCCEEDED.
func (l *Listener) Wait(ctx context.Context) error {
	var result error
	select {
	case result = <-l.done:
	case <-ctx.Done():
		result = fmt.Errorf("no callback received: %w", ctx.Err())
	}

	l.mu.Lock()
	l.state = StateShuttingDown
	l.mu.Unlock()

	stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := l.srv.Shutdown(stopCtx); err != nil {
		log.Printf("[oauth] callback server shutdown: %v", err)
	}
	return result
}

// State returns the listener's current state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Addr returns the bound listener address, valid after Start.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[oauth] panic in callback handler: %v\n%s", rec, debug.Stack())
			l.finish(StateFailed, fmt.Errorf("panic in callback handler: %v", rec))
			w.WriteHeader(http.StatusInternalServerError)
		}
	}()

	q := r.URL.Query()
	cb := CallbackResult{
		Code:  q.Get("code"),
		State: q.Get("state"),
		Err:   q.Get("error"),
		Desc:  q.Get("error_description"),
	}

	l.mu.Lock()
	if l.state != StateListening {
		l.mu.Unlock()
		l.pages.AlreadyDone(w)
		return
	}

	switch {
	case cb.Err != "":
		l.state = StateFailed
		l.mu.Unlock()
		log.Printf("[oauth] authorization denied for %s: %s", l.provider, cb.Err)
		l.pages.Denied(w, cb.Err, cb.Desc)
		l.signal(&DeniedError{Code: cb.Err, Description: cb.Desc})

	case cb.Code != "":
		if l.expState != "" && cb.State != l.expState {
			l.mu.Unlock()
			log.Printf("[oauth] state mismatch on callback for %s", l.provider)
			l.pages.Malformed(w)
			return
		}
		l.state = StateCodeReceived
		l.state = StateExchanging
		l.mu.Unlock()

		// The code is single-use; a browser disconnect must not cancel
		// the in-flight exchange. The exchanger's own client timeout
		// still bounds it.
		exCtx := context.WithoutCancel(r.Context())
		if err := l.onCode(exCtx, cb.Code); err != nil {
			log.Printf("[oauth] exchange failed for %s: %v", l.provider, err)
			l.pages.Failure(w, err.Error())
			l.finish(StateFailed, err)
			return
		}
		l.pages.Success(w, l.provider)
		l.finish(StateSucceeded, nil)

	default:
		// Browser noise (favicon probes, refreshes of the bare path) must
		// not consume the one-shot budget.
		l.mu.Unlock()
		l.pages.Malformed(w)
	}
}

// finish records the terminal state and wakes Wait exactly once.
func (l *Listener) finish(s State, err error) {
	l.mu.Lock()
	if l.state == StateSucceeded || l.state == StateFailed {
		l.mu.Unlock()
		return
	}
	l.state = s
	l.mu.Unlock()
	l.signal(err)
}

func (l *Listener) signal(err error) {
	select {
	case l.done <- err:
	default:
	}
}
