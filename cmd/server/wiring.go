package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgatlas/internal/notify"
	"orgatlas/internal/platform/config"
	"orgatlas/internal/platform/kafka"
	"orgatlas/internal/platform/metrics"
	"orgatlas/internal/platform/middleware"
	pgplatform "orgatlas/internal/platform/postgres"
	"orgatlas/internal/platform/redis"
	"orgatlas/internal/registry/handler"
	"orgatlas/internal/registry/service"
	"orgatlas/internal/registry/store/memory"
	"orgatlas/internal/registry/store/postgres"
	"orgatlas/pkg/platform/circuit"
	"orgatlas/pkg/platform/httputil"
)

// healthCheck is one dependency probed by /healthz.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type storeBackend struct {
	stores service.Stores
	runner service.TxRunner
	health []healthCheck
	close  func()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger, m *metrics.Metrics) (*storeBackend, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := pgplatform.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
			log.Info("database schema applied")
		}
		return &storeBackend{
			stores: service.Stores{
				Locations:     postgres.NewLocationStore(db),
				Coordinates:   postgres.NewCoordinatesStore(db),
				Addresses:     postgres.NewAddressStore(db),
				Organizations: postgres.NewOrganizationStore(db),
				History:       postgres.NewImportHistoryStore(db),
			},
			runner: pgplatform.NewRunner(db,
				pgplatform.WithRetryPolicy(cfg.Retry),
				pgplatform.WithLogger(log),
				pgplatform.WithMetrics(m),
			),
			health: []healthCheck{{name: "postgres", check: db.PingContext}},
			close:  func() { closeDB(db, log) },
		}, nil
	case config.StoreMemory:
		db := memory.NewDB()
		return &storeBackend{
			stores: service.Stores{
				Locations:     memory.NewLocationStore(db),
				Coordinates:   memory.NewCoordinatesStore(db),
				Addresses:     memory.NewAddressStore(db),
				Organizations: memory.NewOrganizationStore(db),
				History:       memory.NewImportHistoryStore(db),
			},
			runner: memory.NewRunner(db,
				memory.WithRetryPolicy(cfg.Retry),
				memory.WithLogger(log),
				memory.WithMetrics(m),
			),
			close: func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", "error", err)
	}
}

type notifierBackend struct {
	dispatcher *notify.Dispatcher
	health     []healthCheck
	close      func()
}

// openNotifier builds the dispatcher for the configured backend. Kafka and
// Redis fall back to the log publisher while their breaker is open.
func openNotifier(ctx context.Context, cfg config.Config, log *slog.Logger) (*notifierBackend, error) {
	opts := []notify.Option{
		notify.WithTopic(cfg.Notify.Topic),
		notify.WithTimeout(cfg.Notify.PublishTimeout),
		notify.WithLogger(log),
		notify.WithMetrics(notify.NewMetrics()),
		notify.WithBreaker(circuit.New("notify-"+cfg.Notify.Backend,
			circuit.WithFailureThreshold(cfg.Notify.FailureThreshold))),
	}

	switch cfg.Notify.Backend {
	case config.NotifyKafka:
		client, err := kafka.New(ctx, cfg.Kafka, cfg.Notify.Topic)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureTopic(ctx, cfg.Notify.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			client.Close()
			return nil, err
		}
		return &notifierBackend{
			dispatcher: notify.NewDispatcher(notify.NewKafkaPublisher(client.Client), opts...),
			health:     []healthCheck{{name: "kafka", check: client.Health}},
			close:      client.Close,
		}, nil
	case config.NotifyRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &notifierBackend{
			dispatcher: notify.NewDispatcher(notify.NewRedisPublisher(client.Client), opts...),
			health:     []healthCheck{{name: "redis", check: client.Health}},
			close: func() {
				if err := client.Close(); err != nil {
					log.Error("failed to close redis client", "error", err)
				}
			},
		}, nil
	case config.NotifyLog:
		return &notifierBackend{
			dispatcher: notify.NewDispatcher(notify.NewLogPublisher(log), opts...),
			close:      func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

func newRouter(svc *service.Service, log *slog.Logger, m *metrics.Metrics, checks []healthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(checks))
	r.Route("/api", handler.New(svc, log).Register)
	return r
}

func healthHandler(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[c.name] = err.Error()
				continue
			}
			body[c.name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
