package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("LIST_DEFAULT_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 10, cfg.Lists.DefaultLimit)
	assert.Equal(t, 100, cfg.Lists.MaxLimit)
	assert.Equal(t, 30*time.Second, cfg.Lists.CacheTTL)
	assert.Equal(t, 3, cfg.Lists.InvalidateRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Lists.InvalidateBackoff)
	assert.Equal(t, 5000, cfg.Export.MaxRows)
}

func TestLoadMongoDriverFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("LIST_CACHE_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Lists.CacheTTL)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
