package authgate

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/walletlock/internal/common"
	"github.com/dmitrijs2005/walletlock/internal/securestore"
)

// faultyStore wraps a MemoryStore, counts calls and fails the operations
// whose error field is set.
type faultyStore struct {
	inner *securestore.MemoryStore

	mu            sync.Mutex
	calls         int
	getErr        error
	setManyErr    error
	deleteManyErr error
	deleteErr     error
	deleted       []string
}

func newFaultyStore() *faultyStore {
	return &faultyStore{inner: securestore.NewMemoryStore()}
}

func fault(op string) error {
	return fmt.Errorf("%s: %w: disk unavailable", op, common.ErrStorageFault)
}

func (s *faultyStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *faultyStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.hit()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.inner.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	s.hit()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	return s.inner.Delete(ctx, key)
}

func (s *faultyStore) SetMany(ctx context.Context, values map[string][]byte) error {
	s.hit()
	if s.setManyErr != nil {
		return s.setManyErr
	}
	return s.inner.SetMany(ctx, values)
}

func (s *faultyStore) DeleteMany(ctx context.Context, keys ...string) error {
	s.hit()
	if s.deleteManyErr != nil {
		return s.deleteManyErr
	}
	return s.inner.DeleteMany(ctx, keys...)
}
