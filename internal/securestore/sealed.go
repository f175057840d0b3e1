package securestore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/cryptox"
)

// SealedStore encrypts every value with the device key before handing it to
// the underlying Store. The key name is bound as associated data, so a
// ciphertext copied under another key fails to open.
type SealedStore struct {
	inner Store
	key   []byte
}

func NewSealedStore(inner Store, deviceKey []byte) (*SealedStore, error) {
	if len(deviceKey) != cryptox.KeySize {
		return nil, cryptox.ErrInvalidKey
	}
	return &SealedStore{inner: inner, key: common.CloneBytes(deviceKey)}, nil
}

// Get returns the decrypted value. A value that does not open under the
// device key is reported as common.ErrCorruptRecord, never as absent.
func (s *SealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}

	plain, err := cryptox.Open(s.key, sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", key, common.ErrCorruptRecord, err)
	}
	return plain, nil
}

func (s *SealedStore) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(s.key, value, []byte(key))
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedStore) SetMany(ctx context.Context, values map[string][]byte) error {
	sealed := make(map[string][]byte, len(values))
	for k, v := range values {
		c, err := cryptox.Seal(s.key, v, []byte(k))
		if err != nil {
			return fmt.Errorf("seal %s: %w", k, err)
		}
		sealed[k] = c
	}
	return s.inner.SetMany(ctx, sealed)
}

func (s *SealedStore) DeleteMany(ctx context.Context, keys ...string) error {
	return s.inner.DeleteMany(ctx, keys...)
}
