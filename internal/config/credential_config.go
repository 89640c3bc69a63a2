package config

import "strings"

type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
	StoreSQLite StoreKind = "sqlite"
	StoreMemory StoreKind = "memory"
)

type CredentialConfig interface {
	GetCredentialStore() StoreKind
	GetCredentialHashKey() []byte
	GetCredentialBlockKey() []byte
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKey() string
}

// Credentials selects where the session token survives restarts.
type Credentials struct {
	Store         string `env:"CREDENTIAL_STORE" envDefault:"file"`
	HashKey       string `env:"CREDENTIAL_HASH_KEY"`
	BlockKey      string `env:"CREDENTIAL_BLOCK_KEY"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisKey      string `env:"REDIS_KEY" envDefault:"mitti:dashboard:token"`
}

var _ CredentialConfig = Credentials{}

func (c Credentials) GetCredentialStore() StoreKind {
	switch kind := StoreKind(strings.ToLower(strings.TrimSpace(c.Store))); kind {
	case StoreRedis, StoreSQLite, StoreMemory:
		return kind
	default:
		return StoreFile
	}
}

// GetCredentialHashKey returns nil when unset; the file backend then keeps a generated key next to the slot.
func (c Credentials) GetCredentialHashKey() []byte {
	if c.HashKey == "" {
		return nil
	}
	return []byte(c.HashKey)
}

func (c Credentials) GetCredentialBlockKey() []byte {
	if c.BlockKey == "" {
		return nil
	}
	return []byte(c.BlockKey)
}

func (c Credentials) GetRedisAddr() string {
	return c.RedisAddr
}

func (c Credentials) GetRedisPassword() string {
	return c.RedisPassword
}

func (c Credentials) GetRedisDB() int {
	return c.RedisDB
}

func (c Credentials) GetRedisKey() string {
	return c.RedisKey
}
