package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	platformstrings "orgatlas/pkg/platform/strings"
	"orgatlas/pkg/platform/tx"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Notification backends.
const (
	NotifyLog   = "log"
	NotifyKafka = "kafka"
	NotifyRedis = "redis"
)

// DefaultImportMaxSize caps the number of organizations in one import.
const DefaultImportMaxSize = 100

// Config is the full process configuration.
type Config struct {
	Server Server
	Store  Store
	Retry  tx.RetryPolicy
	Notify Notify
	Kafka  KafkaConfig
	Redis  RedisConfig
	Import Import
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// IsProduction selects JSON logging.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// Store selects and configures persistence.
type Store struct {
	Backend      string
	PostgresDSN  string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// Notify configures the change-notification sink.
type Notify struct {
	Backend          string
	Topic            string
	PublishTimeout   time.Duration
	FailureThreshold int
}

// KafkaConfig configures the franz-go client.
type KafkaConfig struct {
	Brokers           []string
	ClientID          string
	Partitions        int32
	ReplicationFactor int16
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Import struct {
	MaxSize int
}

// FromEnv builds the config from environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: Server{
			Addr:            getEnv("ORGATLAS_ADDR", ":8080"),
			Environment:     getEnv("ORGATLAS_ENV", "development"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: Store{
			Backend:      getEnv("ORGATLAS_STORE", StoreMemory),
			PostgresDSN:  os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			AutoMigrate:  getEnvBool("DATABASE_AUTO_MIGRATE", true),
		},
		Retry: tx.RetryPolicy{
			MaxAttempts:  getEnvInt("TX_MAX_ATTEMPTS", tx.DefaultMaxAttempts),
			InitialDelay: getEnvDuration("TX_INITIAL_DELAY", tx.DefaultInitialDelay),
			Multiplier:   getEnvFloat("TX_BACKOFF_MULTIPLIER", tx.DefaultMultiplier),
		},
		Notify: Notify{
			Backend:          getEnv("NOTIFY_BACKEND", NotifyLog),
			Topic:            getEnv("NOTIFY_TOPIC", "orgatlas.changes"),
			PublishTimeout:   getEnvDuration("NOTIFY_PUBLISH_TIMEOUT", 5*time.Second),
			FailureThreshold: getEnvInt("NOTIFY_FAILURE_THRESHOLD", 5),
		},
		Kafka: KafkaConfig{
			Brokers:           platformstrings.SplitList(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:          getEnv("KAFKA_CLIENT_ID", "orgatlas"),
			Partitions:        int32(getEnvInt("KAFKA_TOPIC_PARTITIONS", 1)),
			ReplicationFactor: int16(getEnvInt("KAFKA_TOPIC_REPLICATION", 1)),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Import: Import{
			MaxSize: getEnvInt("IMPORT_MAX_SIZE", DefaultImportMaxSize),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects combinations that cannot start.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Notify.Backend {
	case NotifyLog:
	case NotifyKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the %s notifier", NotifyKafka)
		}
	case NotifyRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s notifier", NotifyRedis)
		}
	default:
		return fmt.Errorf("unknown notify backend %q", c.Notify.Backend)
	}
	if c.Import.MaxSize <= 0 {
		return fmt.Errorf("IMPORT_MAX_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
