package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/climate-snapshot-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-snapshot-service/internal/adapter/kafka"
	"github.com/couchcryptid/climate-snapshot-service/internal/observability"
	"github.com/couchcryptid/climate-snapshot-service/internal/pipeline"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load every year and serve the read API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, logger, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	src, err := newSource(cfg, logger)
	if err != nil {
		return err
	}

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("load report publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("load report publishing disabled")
	}

	loader, cache := newLoader(cfg, src, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, loader, loader, cache, metrics, logger, cfg.RateLimitPerMinute)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start loader.
	go func() {
		if err := loader.Run(ctx); err != nil {
			logger.Error("loader error", "error", err)
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
	return nil
}
