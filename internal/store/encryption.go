package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

const encryptionVersion = "v1"

// LoadEncryptionKey decodes a base64 AES-256 key from its env value.
func LoadEncryptionKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, errors.New("CREDENTIAL_ENCRYPTION_KEY is required for the database store")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be 32 bytes base64-encoded (got %d bytes)", len(key))
	}
	return key, nil
}

// encrypt encrypts plaintext with AES-256-GCM.
// Returns "v1:" + base64-encoded nonce+ciphertext.
func encrypt(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, nil) // nonce || ciphertext || tag
	return encryptionVersion + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// decrypt decrypts a versioned ciphertext string.
// Supports "v1:base64data" format.
func decrypt(key []byte, ciphertext string) ([]byte, error) {
	data := ciphertext
	if strings.HasPrefix(ciphertext, "v1:") {
		data = ciphertext[3:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
}
