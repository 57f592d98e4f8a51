package store

import (
	"encoding/base64"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	// 32 bytes for AES-256
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple text", "hello world"},
		{"empty string", ""},
		{"json token set", `{"access_token":"abc","refresh_token":"def"}`},
		{"unicode", "こんにちは世界"},
		{"large payload", strings.Repeat("a", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := encrypt(key, []byte(tt.plaintext))
			if err != nil {
				t.Fatalf("encrypt failed: %v", err)
			}

			decrypted, err := decrypt(key, encrypted)
			if err != nil {
				t.Fatalf("decrypt failed: %v", err)
			}

			if string(decrypted) != tt.plaintext {
				t.Errorf("roundtrip mismatch: got %q, want %q", string(decrypted), tt.plaintext)
			}
		})
	}
}

func TestEncryptProducesVersionedFormat(t *testing.T) {
	key := testKey(t)

	encrypted, err := encrypt(key, []byte("test"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if !strings.HasPrefix(encrypted, "v1:") {
		t.Errorf("expected v1: prefix, got %q", encrypted[:10])
	}

	// After v1: should be valid base64
	b64 := encrypted[3:]
	if _, err := base64.StdEncoding.DecodeString(b64); err != nil {
		t.Errorf("base64 decode failed: %v", err)
	}
}

func TestEncryptProducesUniqueOutput(t *testing.T) {
	key := testKey(t)

	plaintext := []byte("same input")
	a, _ := encrypt(key, plaintext)
	b, _ := encrypt(key, plaintext)

	if a == b {
		t.Error("two encryptions of same plaintext should differ (random nonce)")
	}
}

func TestDecryptInvalidInput(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"invalid base64", "v1:not-valid-base64!!!"},
		{"too short", "v1:" + base64.StdEncoding.EncodeToString([]byte("short"))},
		{"tampered", func() string {
			encrypted, _ := encrypt(key, []byte("original"))
			// Flip a byte in the ciphertext portion
			b := []byte(encrypted)
			b[len(b)-2] ^= 0xff
			return string(b)
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decrypt(key, tt.ciphertext)
			if err == nil {
				t.Error("expected error for invalid ciphertext")
			}
		})
	}
}

func TestLoadEncryptionKey(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString(testKey(t))

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", valid, false},
		{"empty", "", true},
		{"not base64", "not-base64!!!", true},
		{"wrong length", base64.StdEncoding.EncodeToString([]byte("short")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := LoadEncryptionKey(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(key) != 32 {
				t.Errorf("key length = %d, want 32", len(key))
			}
		})
	}
}
