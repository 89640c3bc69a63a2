package credentials_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/mitti-dashboard/credentials"
	"github.com/jrsteele09/mitti-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

type settings struct {
	config.EnvVars
	config.Credentials
}

func TestOpenSelectsBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		store    string
		expected any
	}{
		{"file", "file", &credentials.FileBackend{}},
		{"default is file", "", &credentials.FileBackend{}},
		{"memory", "memory", &credentials.InMemoryBackend{}},
		{"sqlite", "sqlite", &credentials.SQLiteBackend{}},
		{"redis", "redis", &credentials.RedisBackend{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := settings{
				EnvVars: config.EnvVars{DataFolder: t.TempDir()},
				Credentials: config.Credentials{
					Store:     tt.store,
					RedisAddr: mr.Addr(),
					RedisKey:  "mitti:test:" + tt.name,
				},
			}
			backend, closeFn, err := credentials.Open(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeFn() })
			require.IsType(t, tt.expected, backend)

			ctx := context.Background()
			require.NoError(t, backend.Save(ctx, "t1"))
			got, err := backend.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, "t1", got)
			require.NoError(t, backend.Clear(ctx))
			_, err = backend.Load(ctx)
			require.ErrorIs(t, err, credentials.ErrNoCredential)
		})
	}
}
