package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		"THIRD_PARTY_API_URL": "https://voters.example/api",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, SourceLive, cfg.Source.Mode)
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 8, cfg.Resolve.Concurrency)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxBytes)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		"STATIC_DATA":         "1",
		"STORE_BACKEND":       "Postgres",
		"DATABASE_URL":        "postgres://localhost/voterdata",
		"REDIS_URL":           "redis://localhost:6379/0",
		"CACHE_TTL":           "15m",
		"RESOLVE_CONCURRENCY": "4",
		"KAFKA_BROKERS":       "k1:9092, k2:9092,",
	}))
	require.NoError(t, err)

	assert.Equal(t, SourceStatic, cfg.Source.Mode)
	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend, "redis url implies redis cache")
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Resolve.Concurrency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnv_ExplicitModeWinsOverCompatFlag(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		"SOURCE_MODE":         "live",
		"STATIC_DATA":         "1",
		"THIRD_PARTY_API_URL": "https://voters.example/api",
	}))
	require.NoError(t, err)
	assert.Equal(t, SourceLive, cfg.Source.Mode)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"live mode without url", map[string]string{}, "THIRD_PARTY_API_URL"},
		{"postgres without dsn", map[string]string{"STATIC_DATA": "1", "STORE_BACKEND": "postgres"}, "DATABASE_URL"},
		{"mongo without url", map[string]string{"STATIC_DATA": "1", "STORE_BACKEND": "mongo"}, "MONGO_URL"},
		{"redis cache without url", map[string]string{"STATIC_DATA": "1", "CACHE_BACKEND": "redis"}, "REDIS_URL"},
		{"unknown store", map[string]string{"STATIC_DATA": "1", "STORE_BACKEND": "sqlite"}, "STORE_BACKEND"},
		{"bad duration", map[string]string{"STATIC_DATA": "1", "CACHE_TTL": "soon"}, "CACHE_TTL"},
		{"bad integer", map[string]string{"STATIC_DATA": "1", "RESOLVE_CONCURRENCY": "many"}, "RESOLVE_CONCURRENCY"},
		{"zero concurrency", map[string]string{"STATIC_DATA": "1", "RESOLVE_CONCURRENCY": "0"}, "RESOLVE_CONCURRENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromLookup(lookupFrom(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
