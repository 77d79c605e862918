// Package securestore wraps any storage.Adapter and encrypts values at
// rest. Keys stay in the clear (they are well-known names, not secrets);
// values are sealed with XChaCha20-Poly1305 under a key derived from the
// host-supplied passphrase via argon2id.
package securestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// saltKey persists the argon2 salt inside the wrapped adapter, so the
	// same passphrase re-derives the same key across restarts.
	saltKey = "securestore_salt"

	saltLength = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var _ storage.Adapter = (*Store)(nil)

// Store is an encrypting decorator over another adapter.
type Store struct {
	inner      storage.Adapter
	passphrase []byte

	mu      sync.Mutex
	aeadKey []byte
}

// New wraps inner so every value is encrypted before it reaches inner and
// decrypted on the way out. Key derivation is deferred to first use because
// it needs a storage round-trip for the salt.
func New(inner storage.Adapter, passphrase string) (*Store, error) {
	if inner == nil {
		return nil, errors.New("[securestore.New] inner adapter is required")
	}
	if passphrase == "" {
		return nil, errors.New("[securestore.New] passphrase is required")
	}
	return &Store{inner: inner, passphrase: []byte(passphrase)}, nil
}

// key returns the derived AEAD key, bootstrapping the salt on first use.
// Derivation failures are not cached; the next call retries.
func (s *Store) key(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aeadKey != nil {
		return s.aeadKey, nil
	}

	salt, err := s.inner.Get(ctx, saltKey)
	if errors.Is(err, storage.ErrNotFound) {
		raw := make([]byte, saltLength)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Wrap(err, "[securestore.key] rand.Read")
		}
		salt = base64.RawStdEncoding.EncodeToString(raw)
		if err := s.inner.Set(ctx, saltKey, salt); err != nil {
			return nil, errors.Wrap(err, "[securestore.key] persist salt")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "[securestore.key] read salt")
	}

	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return nil, errors.Wrap(err, "[securestore.key] decode salt")
	}
	s.aeadKey = argon2.IDKey(s.passphrase, rawSalt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return s.aeadKey, nil
}

func seal(key []byte, plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", errors.Wrap(err, "[securestore.seal] NewX")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "[securestore.seal] rand.Read")
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

func open(key []byte, ciphertext string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "[securestore.open] decode")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", errors.Wrap(err, "[securestore.open] NewX")
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("[securestore.open] ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Wrap(err, "[securestore.open] decrypt")
	}
	return string(plaintext), nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	aeadKey, err := s.key(ctx)
	if err != nil {
		return "", err
	}
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return open(aeadKey, sealed)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	aeadKey, err := s.key(ctx)
	if err != nil {
		return err
	}
	sealed, err := seal(aeadKey, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

// Clear wipes the wrapped adapter, salt included, and drops the derived key.
// The next use bootstraps a fresh salt and key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.inner.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.aeadKey = nil
	s.mu.Unlock()
	return nil
}
