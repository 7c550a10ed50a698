package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgatlas/pkg/platform/tx"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, NotifyLog, cfg.Notify.Backend)
	assert.Equal(t, tx.DefaultRetryPolicy(), cfg.Retry)
	assert.Equal(t, DefaultImportMaxSize, cfg.Import.MaxSize)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ORGATLAS_STORE", StorePostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/orgatlas?sslmode=disable")
	t.Setenv("TX_MAX_ATTEMPTS", "3")
	t.Setenv("TX_INITIAL_DELAY", "50ms")
	t.Setenv("NOTIFY_BACKEND", NotifyKafka)
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("postgres without DSN", func(t *testing.T) {
		t.Setenv("ORGATLAS_STORE", StorePostgres)
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown notifier", func(t *testing.T) {
		t.Setenv("NOTIFY_BACKEND", "carrier-pigeon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "unknown notify backend")
	})

	t.Run("redis notifier without URL", func(t *testing.T) {
		t.Setenv("NOTIFY_BACKEND", NotifyRedis)
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REDIS_URL")
	})
}
