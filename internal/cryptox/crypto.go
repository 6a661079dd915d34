// Package cryptox seals small secrets (the session token) before they are
// written to the local database.
package cryptox

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/dmitrijs2005/findash/internal/filex"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of the per-installation sealing key.
const KeySize = chacha20poly1305.KeySize

var (
	ErrInvalidKey     = errors.New("invalid sealing key")
	ErrSealedTooShort = errors.New("sealed value too short")
)

// Seal encrypts plaintext with XChaCha20-Poly1305 under key.
// The result is nonce || ciphertext; a fresh random nonce is drawn per call.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. It fails when the value was sealed under another key
// or has been tampered with.
func Open(key, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrSealedTooShort
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed value: %w", err)
	}
	return plaintext, nil
}

// LoadOrCreateKey reads the sealing key stored at path, generating and
// writing a new random key (mode 0600) when the file does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKey, path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}

	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("key dir: %w", err)
	}
	key = common.GenerateRandByteArray(KeySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key %s: %w", path, err)
	}
	return key, nil
}
