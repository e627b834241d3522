// Command climatesnap loads yearly climate snapshots and serves or queries
// the derived views.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-snapshot-service/internal/adapter/filesource"
	"github.com/couchcryptid/climate-snapshot-service/internal/adapter/httpsource"
	"github.com/couchcryptid/climate-snapshot-service/internal/config"
	"github.com/couchcryptid/climate-snapshot-service/internal/observability"
	"github.com/couchcryptid/climate-snapshot-service/internal/pipeline"
	"github.com/couchcryptid/climate-snapshot-service/internal/source"
	"github.com/couchcryptid/climate-snapshot-service/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "climatesnap",
		Short:         "Yearly climate snapshots, warming crossings and district views",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(crossingsCmd())
	rootCmd.AddCommand(seriesCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func loadConfig(logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, observability.NewLogger(logOut, cfg.LogLevel, cfg.LogFormat), nil
}

func newSource(cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	if cfg.DataSource != config.SourceHTTP {
		return filesource.New(cfg.DataDir), nil
	}
	remote, err := httpsource.New(httpsource.Config{
		BaseURL:    cfg.DataBaseURL,
		Timeout:    cfg.FetchTimeout,
		MaxRetries: cfg.FetchMaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}
	if cfg.DocumentCacheSize == 0 {
		return remote, nil
	}
	return source.NewCached(remote, cfg.DocumentCacheSize), nil
}

func newLoader(cfg *config.Config, src source.Source, pub pipeline.Publisher, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Loader, *store.SnapshotCache) {
	cache := store.New()
	return pipeline.New(src, cache, pub, logger, metrics, pipeline.Options{
		ReferenceYear: cfg.ReferenceYear,
		Timeline:      cfg.Timeline,
		Threshold:     cfg.CrossingThreshold,
		Concurrency:   cfg.FetchConcurrency,
		RetryFailed:   cfg.RetryFailedYears,
		Containment:   cfg.Containment,
	}), cache
}

// loadOnce builds a loader for one-shot commands and runs a single load.
func loadOnce(ctx context.Context) (*pipeline.Loader, pipeline.LoadReport, error) {
	cfg, logger, err := loadConfig(os.Stderr)
	if err != nil {
		return nil, pipeline.LoadReport{}, err
	}
	src, err := newSource(cfg, logger)
	if err != nil {
		return nil, pipeline.LoadReport{}, err
	}
	loader, _ := newLoader(cfg, src, nil, logger, observability.NewMetricsForTesting())
	report, err := loader.Load(ctx)
	if err != nil {
		return nil, pipeline.LoadReport{}, err
	}
	return loader, report, nil
}
