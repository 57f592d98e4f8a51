package onepasswordapi_test

import (
	"context"
	"net/http"
	"os"
	"testing"

	"apiprobe/pkg/onepasswordapi"
)

// These tests call the real 1Password Events API.
// Set ONEPASSWORD_EVENTS_TOKEN to run.
//
// Usage:
//   ONEPASSWORD_EVENTS_TOKEN=xxx go test ./pkg/onepasswordapi/ -v -count=1

func skipIfNoToken(t *testing.T) string {
	t.Helper()
	token := os.Getenv("ONEPASSWORD_EVENTS_TOKEN")
	if token == "" {
		t.Skip("ONEPASSWORD_EVENTS_TOKEN not set")
	}
	return token
}

func TestIntrospect(t *testing.T) {
	c := onepasswordapi.NewClient(skipIfNoToken(t), "")
	status, body, err := c.Introspect(context.Background())
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", status, body)
	}
	t.Logf("introspect: %s", body)
}

func TestSignInAttempts(t *testing.T) {
	c := onepasswordapi.NewClient(skipIfNoToken(t), "")
	status, body, err := c.SignInAttempts(context.Background())
	if err != nil {
		t.Fatalf("signinattempts: %v", err)
	}
	if status != http.StatusOK && status != http.StatusForbidden {
		t.Fatalf("status = %d, body = %s", status, body)
	}
	t.Logf("signinattempts (%d): %s", status, body)
}
