package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"orgatlas/internal/platform/config"
	"orgatlas/internal/platform/httpserver"
	"orgatlas/internal/platform/logger"
	"orgatlas/internal/platform/metrics"
	registrymetrics "orgatlas/internal/registry/metrics"
	"orgatlas/internal/registry/service"
)

// main wires configuration, storage, notifications and the HTTP surface, then
// runs until SIGINT or SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.IsProduction())

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	platformMetrics := metrics.New()

	backend, err := openStore(ctx, cfg, log, platformMetrics)
	if err != nil {
		return err
	}
	defer backend.close()

	notifier, err := openNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer notifier.close()

	svc, err := service.New(backend.stores, backend.runner,
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
		service.WithNotifier(notifier.dispatcher),
		service.WithImportMaxSize(cfg.Import.MaxSize),
	)
	if err != nil {
		return err
	}

	router := newRouter(svc, log, platformMetrics, append(backend.health, notifier.health...))
	srv := httpserver.New(cfg.Server, router)

	log.Info("starting orgatlas",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"notify", cfg.Notify.Backend,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			log.Info("shutdown signal received")
		}
		return nil
	})
	err = g.Wait()

	// Deliveries scheduled by the last requests finish before the clients close.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if werr := notifier.dispatcher.Wait(drainCtx); werr != nil {
		log.Warn("pending notifications abandoned", "error", werr)
	}
	return err
}
