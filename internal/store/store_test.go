package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apiprobe/internal/oauth"
)

func TestEnvFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.google")
	if err := os.WriteFile(path, []byte("GOOGLE_CLIENT_ID=abc\n# keep me\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s := &EnvFileStore{Path: path}

	ts := &oauth.TokenSet{
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		TokenType:    "Bearer",
		ExpiresAt:    1700000000,
	}
	if err := s.Save(context.Background(), ts); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	for _, want := range []string{"GOOGLE_CLIENT_ID=abc", "# keep me", "ACCESS_TOKEN=tok1", "REFRESH_TOKEN=ref1", "TOKEN_TYPE=Bearer", "EXPIRES_AT=1700000000", "AUTH_STATUS=ok"} {
		if !strings.Contains(content, want) {
			t.Errorf("file missing %q:\n%s", want, content)
		}
	}

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "tok1" || got.RefreshToken != "ref1" || got.ExpiresAt != 1700000000 {
		t.Errorf("loaded = %+v", got)
	}
}

func TestEnvFileStoreDropsStaleRefreshToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	s := &EnvFileStore{Path: path}

	withRefresh := &oauth.TokenSet{AccessToken: "tok1", RefreshToken: "ref1", TokenType: "Bearer"}
	if err := s.Save(context.Background(), withRefresh); err != nil {
		t.Fatal(err)
	}
	withoutRefresh := &oauth.TokenSet{AccessToken: "tok2", TokenType: "Bearer"}
	if err := s.Save(context.Background(), withoutRefresh); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "REFRESH_TOKEN") {
		t.Errorf("stale REFRESH_TOKEN survived overwrite:\n%s", data)
	}
	if !strings.Contains(string(data), "ACCESS_TOKEN=tok2") {
		t.Errorf("access token not overwritten:\n%s", data)
	}
}

func TestEnvFileStoreLoadEmpty(t *testing.T) {
	s := &EnvFileStore{Path: filepath.Join(t.TempDir(), "nope")}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("loaded = %+v, want nil", got)
	}
}

func TestJSONFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	google := &JSONFileStore{Path: path, Provider: "google"}
	zendesk := &JSONFileStore{Path: path, Provider: "zendesk"}

	if err := google.Save(context.Background(), &oauth.TokenSet{AccessToken: "g1", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}
	if err := zendesk.Save(context.Background(), &oauth.TokenSet{AccessToken: "z1", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}
	// Overwrite keeps one entry per provider.
	if err := google.Save(context.Background(), &oauth.TokenSet{AccessToken: "g2", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}

	got, err := google.Load(context.Background())
	if err != nil {
		t.Fatalf("load google: %v", err)
	}
	if got.AccessToken != "g2" {
		t.Errorf("google token = %q, want g2", got.AccessToken)
	}
	other, err := zendesk.Load(context.Background())
	if err != nil {
		t.Fatalf("load zendesk: %v", err)
	}
	if other.AccessToken != "z1" {
		t.Errorf("zendesk token = %q, want z1 (must survive google overwrite)", other.AccessToken)
	}

	data, _ := os.ReadFile(path)
	if strings.Count(string(data), `"google"`) != 1 {
		t.Errorf("google should appear exactly once:\n%s", data)
	}
}

func TestJSONFileStoreLoadAbsentProvider(t *testing.T) {
	s := &JSONFileStore{Path: filepath.Join(t.TempDir(), "tokens.json"), Provider: "google"}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("loaded = %+v, want nil", got)
	}
}
