package oneforgeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quotes" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key123" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("pairs") != "EURUSD" {
			t.Errorf("pairs = %q", q.Get("pairs"))
		}
		w.Write([]byte(`[{"p":1.08}]`))
	}))
	defer srv.Close()

	c := NewClient("key123", srv.URL)
	status, body, err := c.Quotes(context.Background(), "EURUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if string(body) != `[{"p":1.08}]` {
		t.Errorf("body = %s", body)
	}
}

func TestMarketStatusUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad", srv.URL)
	status, _, err := c.MarketStatus(context.Background())
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}
