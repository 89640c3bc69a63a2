package credentials

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/mitti-dashboard/internal/config"
	"github.com/redis/go-redis/v9"
)

const sqliteFileName = "credentials.db"

// Settings is the configuration Open reads.
type Settings interface {
	config.CredentialConfig
	GetDataFolder() string
}

// Open builds the backend selected by CREDENTIAL_STORE. The returned close
// func releases whatever connection the backend holds and is never nil.
func Open(cfg Settings) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetCredentialStore() {
	case config.StoreMemory:
		return NewInMemoryBackend(""), noop, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		return NewRedisBackend(client, cfg.GetRedisKey()), client.Close, nil

	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.GetDataFolder(), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create data folder: %w", err)
		}
		b, err := OpenSQLiteBackend(filepath.Join(cfg.GetDataFolder(), sqliteFileName))
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil

	default:
		b, err := NewFileBackend(cfg.GetDataFolder(), cfg.GetCredentialHashKey(), cfg.GetCredentialBlockKey())
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	}
}
