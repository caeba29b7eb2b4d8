package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/router"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml if present)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fintrack: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := applog.New(applog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	applog.SetDefault(logger)

	if err := database.Migrate(cfg.Database.Path); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close(db)

	store := storage.New(db, storage.Options{
		DefaultLimit: cfg.App.DefaultPageSize,
		MaxLimit:     cfg.App.MaxPageSize,
	})

	tokens, err := util.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL())
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			return fmt.Errorf("connect AMQP: %w", err)
		}
		publisher = p
		logger.Info("change notifications enabled", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}
	defer publisher.Close()

	engine := router.SetupRouter(router.Deps{
		Mode:      cfg.Server.Mode,
		Version:   version,
		Store:     store,
		Hasher:    util.NewPasswordHasher(cfg.Security.BcryptCost),
		Tokens:    tokens,
		Publisher: publisher,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.ReadTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
