package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/unparse/pkg/ports"
)

// envelopePrefix marks an encrypted cache entry.
const envelopePrefix = "enc:v1:"

// ErrNotEncrypted is returned when a cached entry has no encrypted envelope.
var ErrNotEncrypted = errors.New("cached entry is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new entries.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are old keys to try when decryption fails.
	// This enables key rotation without flushing the cache.
	FallbackKeys [][]byte
}

// ParseKeys builds a config from hex encoded keys. The first key is active.
func ParseKeys(keys ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	for i, k := range keys {
		raw, err := hex.DecodeString(strings.TrimSpace(k))
		if err != nil {
			return EncryptionConfig{}, fmt.Errorf("key %d: %w", i, err)
		}
		if len(raw) != 32 {
			return EncryptionConfig{}, fmt.Errorf("key %d: must be 32 bytes (AES-256), got %d", i, len(raw))
		}
		if i == 0 {
			cfg.ActiveKey = raw
		} else {
			cfg.FallbackKeys = append(cfg.FallbackKeys, raw)
		}
	}
	if cfg.ActiveKey == nil {
		return EncryptionConfig{}, errors.New("no encryption key given")
	}
	return cfg, nil
}

type encryptionMiddleware struct {
	next   ports.RenderCache
	config EncryptionConfig
}

// NewEncryption creates a middleware that stores rendered text sealed with
// AES-GCM. Entries written with a fallback key stay readable.
func NewEncryption(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.RenderCache) ports.RenderCache {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Set(ctx context.Context, key, text string) error {
	ciphertext, err := encrypt([]byte(text), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt entry: %w", err)
	}
	return m.next.Set(ctx, key, envelopePrefix+base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) Get(ctx context.Context, key string) (string, bool, error) {
	envelope, ok, err := m.next.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	encoded, found := strings.CutPrefix(envelope, envelopePrefix)
	if !found {
		// Fail secure: a plain entry is never served from an encrypted cache.
		return "", false, ErrNotEncrypted
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt entry: %w", err)
	}
	return string(plain), true, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
