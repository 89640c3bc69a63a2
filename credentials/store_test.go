package credentials_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jrsteele09/mitti-dashboard/credentials"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	credentials.InMemoryBackend
	failWrites bool
	failLoad   bool
}

var errStorage = errors.New("storage offline")

func (b *failingBackend) Save(ctx context.Context, c string) error {
	if b.failWrites {
		return errStorage
	}
	return b.InMemoryBackend.Save(ctx, c)
}

func (b *failingBackend) Load(ctx context.Context) (string, error) {
	if b.failLoad {
		return "", errStorage
	}
	return b.InMemoryBackend.Load(ctx)
}

func (b *failingBackend) Clear(ctx context.Context) error {
	if b.failWrites {
		return errStorage
	}
	return b.InMemoryBackend.Clear(ctx)
}

func TestLoadReadsBackendOnce(t *testing.T) {
	ctx := context.Background()
	backend := credentials.NewInMemoryBackend("t1")
	store := credentials.NewStore(backend)

	require.Equal(t, "", store.Current(), "nothing is cached before Load")

	for i := 0; i < 3; i++ {
		c, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "t1", c)
	}
	require.Equal(t, 1, backend.Loads())
	require.Equal(t, "t1", store.Current())
}

func TestLoadEmpty(t *testing.T) {
	store := credentials.NewStore(credentials.NewInMemoryBackend(""))
	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, credentials.ErrNoCredential)
}

func TestSaveClearRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := credentials.NewInMemoryBackend("")
	store := credentials.NewStore(backend)

	require.NoError(t, store.Save(ctx, "t1"))
	require.Equal(t, "t1", store.Current())
	require.Equal(t, "t1", backend.Value())

	require.NoError(t, store.Save(ctx, "t2"))
	require.Equal(t, "t2", backend.Value())

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clear is idempotent")
	require.Equal(t, "", store.Current())
	require.Equal(t, "", backend.Value())

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, credentials.ErrNoCredential)
}

func TestSaveRejectsEmpty(t *testing.T) {
	store := credentials.NewStore(credentials.NewInMemoryBackend(""))
	require.Error(t, store.Save(context.Background(), ""))
}

func TestClearIf(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewStore(credentials.NewInMemoryBackend(""))
	require.NoError(t, store.Save(ctx, "t2"))

	cleared, err := store.ClearIf(ctx, "t1")
	require.NoError(t, err)
	require.False(t, cleared, "stale credential must not clear a newer one")
	require.Equal(t, "t2", store.Current())

	cleared, err = store.ClearIf(ctx, "t2")
	require.NoError(t, err)
	require.True(t, cleared)

	cleared, err = store.ClearIf(ctx, "t2")
	require.NoError(t, err)
	require.False(t, cleared)

	cleared, err = store.ClearIf(ctx, "")
	require.NoError(t, err)
	require.False(t, cleared)
}

func TestBackendWriteFailureStillUpdatesProcessState(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{}
	store := credentials.NewStore(backend)

	backend.failWrites = true
	require.ErrorIs(t, store.Save(ctx, "t1"), errStorage)
	require.Equal(t, "t1", store.Current())

	require.ErrorIs(t, store.Clear(ctx), errStorage)
	require.Equal(t, "", store.Current())
}

func TestUnreadableSlotStartsEmpty(t *testing.T) {
	backend := &failingBackend{failLoad: true}
	store := credentials.NewStore(backend)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, errStorage)
	require.Equal(t, "", store.Current())

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, credentials.ErrNoCredential, "the failed read is not retried")
}

func TestConcurrentClearIfIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewStore(credentials.NewInMemoryBackend(""))
	require.NoError(t, store.Save(ctx, "t1"))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cleared, _ := store.ClearIf(ctx, "t1"); cleared {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, winners)
	require.Equal(t, "", store.Current())
}
