// Command sync-worker consumes change notifications and marks the changed
// rows as synced.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"

	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "sync-worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.AMQP.URL == "" {
		return errors.New("amqp.url is required (set FINTRACK_AMQP_URL)")
	}

	logger := applog.New(applog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: applog.ComponentEvents})
	applog.SetDefault(logger)

	if err := database.Migrate(cfg.Database.Path); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close(db)

	consumer, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
	if err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
	}
	defer consumer.Close()

	worker := events.NewWorker(storage.New(db, storage.Options{}), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(gctx, worker.Handle)
	})

	logger.Info("sync worker started", "queue", cfg.AMQP.Queue)
	err = g.Wait()
	logger.Info("sync worker stopped")
	return err
}
