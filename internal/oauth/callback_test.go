package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func startListener(t *testing.T, expState string, onCode func(ctx context.Context, code string) error) *Listener {
	t.Helper()
	l := NewListener("testprovider", 0, "/auth/callback", expState, nil, onCode)
	if err := l.Start(); err != nil {
		t.Fatalf("start listener: %v", err)
	}
	return l
}

func get(t *testing.T, l *Listener, query string) *http.Response {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://%s/auth/callback?%s", l.Addr(), query))
	if err != nil {
		t.Fatalf("callback request: %v", err)
	}
	resp.Body.Close()
	return resp
}

func TestListenerSuccess(t *testing.T) {
	var gotCode string
	l := startListener(t, "state123", func(ctx context.Context, code string) error {
		gotCode = code
		return nil
	})

	resp := get(t, l, "code=testcode123&state=state123")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if gotCode != "testcode123" {
		t.Errorf("code = %q, want testcode123", gotCode)
	}
}

func TestListenerDeniedNeverInvokesExchange(t *testing.T) {
	var exchanges atomic.Int32
	l := startListener(t, "state123", func(ctx context.Context, code string) error {
		exchanges.Add(1)
		return nil
	})

	get(t, l, "error=access_denied&error_description=User+declined")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := l.Wait(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("error type = %T, want *DeniedError", err)
	}
	if denied.Code != "access_denied" || denied.Description != "User declined" {
		t.Errorf("denied = %+v", denied)
	}
	if exchanges.Load() != 0 {
		t.Errorf("exchange invoked %d times, want 0", exchanges.Load())
	}
}

func TestListenerOneShot(t *testing.T) {
	var exchanges atomic.Int32
	l := startListener(t, "state123", func(ctx context.Context, code string) error {
		exchanges.Add(1)
		return nil
	})

	first := get(t, l, "code=one&state=state123")
	if first.StatusCode != http.StatusOK {
		t.Errorf("first status = %d, want 200", first.StatusCode)
	}
	second := get(t, l, "code=two&state=state123")
	if second.StatusCode != http.StatusGone {
		t.Errorf("second status = %d, want 410", second.StatusCode)
	}
	if exchanges.Load() != 1 {
		t.Errorf("exchange invoked %d times, want 1", exchanges.Load())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestListenerMalformedDoesNotTerminate(t *testing.T) {
	l := startListener(t, "state123", func(ctx context.Context, code string) error {
		return nil
	})

	resp := get(t, l, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if got := l.State(); got != StateListening {
		t.Errorf("state = %s, want LISTENING", got)
	}

	// A real callback still succeeds afterwards.
	get(t, l, "code=late&state=state123")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestListenerStateMismatch(t *testing.T) {
	var exchanges atomic.Int32
	l := startListener(t, "expected", func(ctx context.Context, code string) error {
		exchanges.Add(1)
		return nil
	})

	resp := get(t, l, "code=testcode&state=forged")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if exchanges.Load() != 0 {
		t.Errorf("exchange invoked %d times, want 0", exchanges.Load())
	}
	if got := l.State(); got != StateListening {
		t.Errorf("state = %s, want LISTENING", got)
	}

	get(t, l, "code=testcode&state=expected")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestListenerExchangeSurvivesBrowserDisconnect(t *testing.T) {
	block := make(chan struct{})
	var exchangeCtxErr error
	l := startListener(t, "", func(ctx context.Context, code string) error {
		<-block
		exchangeCtxErr = ctx.Err()
		return nil
	})

	// The browser gives up while the exchange is still running.
	client := &http.Client{Timeout: 100 * time.Millisecond}
	if _, err := client.Get(fmt.Sprintf("http://%s/auth/callback?code=slow", l.Addr())); err == nil {
		t.Fatal("expected the client to time out")
	}
	close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("run failed after browser disconnect: %v", err)
	}
	if exchangeCtxErr != nil {
		t.Errorf("exchange context canceled by disconnect: %v", exchangeCtxErr)
	}
}

func TestListenerExchangeFailure(t *testing.T) {
	l := startListener(t, "", func(ctx context.Context, code string) error {
		return errors.New("invalid_grant")
	})

	get(t, l, "code=bad")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := l.Wait(ctx)
	if err == nil || err.Error() != "invalid_grant" {
		t.Errorf("wait error = %v, want invalid_grant", err)
	}
}

func TestListenerTimeout(t *testing.T) {
	l := startListener(t, "state123", func(ctx context.Context, code string) error {
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("wait error = %v, want deadline exceeded", err)
	}
}

func TestListenerPortInUse(t *testing.T) {
	first := startListener(t, "", func(ctx context.Context, code string) error { return nil })
	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	second := NewListener("testprovider", port, "/auth/callback", "", nil, nil)
	if err := second.Start(); err == nil {
		t.Error("expected bind failure on occupied port")
		second.srv.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	first.Wait(ctx)
}
