package credentials

import (
	"context"
	"sync"
)

var _ Backend = (*InMemoryBackend)(nil)

// InMemoryBackend keeps the slot in process memory. Nothing survives a restart.
type InMemoryBackend struct {
	mu         sync.Mutex
	credential string
	loads      int
	writes     int
}

func NewInMemoryBackend(initial string) *InMemoryBackend {
	return &InMemoryBackend{credential: initial}
}

func (b *InMemoryBackend) Save(_ context.Context, credential string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credential = credential
	b.writes++
	return nil
}

func (b *InMemoryBackend) Load(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loads++
	if b.credential == "" {
		return "", ErrNoCredential
	}
	return b.credential, nil
}

func (b *InMemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credential = ""
	b.writes++
	return nil
}

// Value returns the slot contents without counting as a load.
func (b *InMemoryBackend) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.credential
}

// Loads reports how many times Load has been called.
func (b *InMemoryBackend) Loads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loads
}
