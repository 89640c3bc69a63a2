package config_test

import (
	"testing"

	"github.com/jrsteele09/mitti-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, name := range []string{"PORT", "APP_NAME", "ENV", "API_URL", "LANDING_PATH", "CREDENTIAL_STORE"} {
		t.Setenv(name, "")
	}

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "/", c.GetLandingPath())
	require.Equal(t, config.StoreFile, c.GetCredentialStore())
	require.Nil(t, c.GetCredentialHashKey())
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("API_URL", "http://backend:8000/")
	t.Setenv("LANDING_PATH", "/dashboard")
	t.Setenv("CREDENTIAL_STORE", "Redis")
	t.Setenv("REDIS_DB", "3")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "http://backend:8000", c.GetAPIURL())
	require.Equal(t, "/dashboard", c.GetLandingPath())
	require.Equal(t, config.StoreRedis, c.GetCredentialStore())
	require.Equal(t, 3, c.GetRedisDB())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LANDING_PATH", "dashboard")
	t.Setenv("CREDENTIAL_STORE", "etcd")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "/", c.GetLandingPath())
	require.Equal(t, config.StoreFile, c.GetCredentialStore())
}

func TestBadIntegerIsAnError(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := config.New()
	require.Error(t, err)
}
