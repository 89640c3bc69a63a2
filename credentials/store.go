package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/mitti-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

// Store is the process-wide credential slot. The durable Backend is read once,
// by Load; after that the cached value is authoritative for this process and
// every write goes through to the backend.
//
// Writes to the cache always succeed. A failing backend write is returned to
// the caller, but the in-process state still changes so logout and teardown
// can never be blocked by storage.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	current string
	loaded  bool
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the durable slot the first time it is called and returns the
// cached value afterwards. It returns ErrNoCredential when the slot is empty.
// An unreadable slot is treated as empty and its error is returned.
func (s *Store) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loaded = true
		credential, err := s.backend.Load(ctx)
		if err != nil && !errors.Is(err, ErrNoCredential) {
			log.Warn().Err(err).Msg("credential slot unreadable, starting without a credential")
			return "", err
		}
		s.current = credential
	}

	if s.current == "" {
		return "", ErrNoCredential
	}
	return s.current, nil
}

// Current returns the cached credential, or "" when there is none.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save overwrites the slot.
func (s *Store) Save(ctx context.Context, credential string) error {
	if credential == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "save credential: empty value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	s.current = credential
	if err := s.backend.Save(ctx, credential); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}

// Clear empties the slot. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// ClearIf empties the slot only while it still holds credential. It reports
// whether the slot was cleared.
func (s *Store) ClearIf(ctx context.Context, credential string) (bool, error) {
	if credential == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != credential {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.loaded = true
	s.current = ""
	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted credential: %w", err)
	}
	return nil
}
