package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/cache"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/config"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/events"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/graph"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/resolvers"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/server"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data := store.NewSeeded()

	// In-process subscribers always get bookAdded; Kafka export is optional.
	broker := events.NewBroker(cfg.SubscriberBuffer, logger.Named("broker"))
	publishers := events.Fanout{broker}
	if cfg.KafkaBroker != "" {
		kafka := events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic, logger.Named("kafka"))
		defer func() {
			if err := kafka.Close(); err != nil {
				logger.Warn("closing kafka writer", zap.Error(err))
			}
		}()
		publishers = append(publishers, kafka)
		logger.Info("exporting bookAdded events",
			zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	}

	set := resolvers.NewSet(data, publishers, broker, logger.Named("resolvers"))
	schema, err := graph.NewExecutableSchema(graph.NewResolver(set))
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	h := server.NewHandler(schema,
		server.WithPersistedQueries(cache.NewQueries(cfg.PersistedQueryTTL)),
		server.WithLogger(logger.Named("graphql")),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(h, data, cfg.LoaderWait, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running",
			zap.String("playground", fmt.Sprintf("http://localhost:%s/", cfg.Port)),
			zap.String("endpoint", fmt.Sprintf("http://localhost:%s/query", cfg.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
