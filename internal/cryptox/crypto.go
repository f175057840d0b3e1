// Package cryptox seals small secrets with AES-256-GCM under a device key.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/filex"
)

// KeySize is the device key length (AES-256).
const KeySize = 32

var (
	ErrInvalidKey    = errors.New("invalid device key")
	ErrMalformedSeal = errors.New("malformed sealed value")
)

// Seal encrypts plaintext with key. aad is authenticated but not encrypted;
// the same aad must be passed to Open. The output is nonce||ciphertext, with
// a fresh random nonce per call.
func Seal(key, plaintext, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, err := common.GenerateRandByteArray(aesgcm.NonceSize())
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return aesgcm.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. It fails if the value was produced under another key,
// another aad, or was modified.
func Open(key, sealed, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns+aesgcm.Overhead() {
		return nil, ErrMalformedSeal
	}

	plaintext, err := aesgcm.Open(nil, sealed[:ns], sealed[ns:], aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSeal, err)
	}
	return plaintext, nil
}

// LoadOrCreateKey reads the device key stored at path, creating a new random
// key with owner-only permissions when the file does not exist yet.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKey, path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read device key: %w", err)
	}

	key, err = common.GenerateRandByteArray(KeySize)
	if err != nil {
		return nil, fmt.Errorf("generate device key: %w", err)
	}
	if err := filex.WriteFileAtomic(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write device key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
