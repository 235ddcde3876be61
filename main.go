package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repos, closeStore, err := openRepositories(ctx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("store ready", zap.String("driver", cfg.DBDriver))

	// Events are optional; without a broker the API runs unchanged.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger.Named("rabbitmq"))
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient

		eventLog := logger.Named("order-events")
		if err := mqClient.ConsumeOrderEvents(func(e rabbitmq.OrderEvent) error {
			eventLog.Info("order event",
				zap.String("type", e.Type),
				zap.String("order_id", e.OrderID),
				zap.String("user_id", e.UserID),
				zap.Float64("total", e.TotalPrice))
			return nil
		}); err != nil {
			logger.Warn("order event consumer not started", zap.Error(err))
		}
	} else {
		logger.Info("RABBITMQ_URL not set; order events disabled")
	}

	server := app.New(cfg, repos, publisher, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("env", cfg.Env))
		errCh <- server.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
	return nil
}

// openRepositories connects the configured store and returns its
// repositories with a matching close function.
func openRepositories(ctx context.Context, cfg config.Config) (repositories.Set, func(), error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, db, err := repositories.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return repositories.Set{}, nil, err
		}
		closeFn := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutdownCtx)
		}
		return repositories.NewMongoSet(db), closeFn, nil

	case config.DriverSQLite, config.DriverPostgres:
		db, err := repositories.OpenGORM(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return repositories.Set{}, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repositories.NewGORMSet(db), closeFn, nil

	default:
		return repositories.Set{}, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
