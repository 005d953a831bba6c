package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/dwd-warncodes/internal/adapter/http"
	"github.com/couchcryptid/dwd-warncodes/internal/adapter/dwd"
	kafkaadapter "github.com/couchcryptid/dwd-warncodes/internal/adapter/kafka"
	"github.com/couchcryptid/dwd-warncodes/internal/catalog"
	"github.com/couchcryptid/dwd-warncodes/internal/config"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
	"github.com/couchcryptid/dwd-warncodes/internal/publish"
)

// alwaysReady is used when nothing has to happen before the catalog is served.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	cat, err := catalog.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	counts := make(map[string]int)
	for c, n := range cat.Counts() {
		counts[string(c)] = n
	}
	metrics.SetCatalogEntries(counts)
	logger.Info("catalog loaded", "entries", cat.Len(), "path", cfg.CatalogPath)

	client := dwd.NewClient(cfg.FeedURL, cfg.FeedTimeout, metrics, logger)
	feed := dwd.NewCachedFeed(client, cfg.FeedCacheTTL, nil, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Publishing is feature-flagged via KAFKA_ENABLED.
	var (
		ready  sharedobs.ReadinessChecker = alwaysReady{}
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher := publish.New(writer, logger, metrics, cfg.PublishBatchSize)
		ready = publisher
		logger.Info("catalog publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)

		go func() {
			if err := publisher.Publish(ctx, cat); err != nil {
				logger.Error("catalog publish error", "error", err)
			}
		}()
	} else {
		logger.Info("catalog publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cat, feed, ready, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
