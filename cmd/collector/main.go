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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/socialrank/collector/pkg/collector"
	"github.com/socialrank/collector/pkg/config"
	"github.com/socialrank/collector/pkg/lib/log"
	"github.com/socialrank/collector/pkg/metrics"
	"github.com/socialrank/collector/pkg/storage/postgres"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	mode := flag.String("mode", string(collector.ModeTraining), "collection mode: training or serving")
	periodic := flag.Bool("periodic", false, "keep running at the configured interval instead of one shot")
	train := flag.Bool("train", false, "invoke the model toolchain after a training run")
	flag.Parse()

	if *mode != string(collector.ModeTraining) && *mode != string(collector.ModeServing) {
		return fmt.Errorf("invalid mode %q", *mode)
	}

	// Optional in deployed environments, the config comes from real env vars there.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := log.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := postgres.NewDB(&cfg.DB)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, m, logger)
	}

	batch := initBatch(logger, cfg, db, m)

	if *periodic {
		return batch.RunPeriodically(ctx, collector.Mode(*mode))
	}

	report, err := batch.Run(ctx, collector.Mode(*mode))
	if err != nil {
		return fmt.Errorf("collection run: %w", err)
	}

	for _, skip := range report.Skips() {
		logger.Warn().
			Str("user_id", skip.UserID).
			Str("reason", skip.Reason).
			Msg("User skipped")
	}

	if *train && collector.Mode(*mode) == collector.ModeTraining {
		trainer := collector.NewTrainer(logger, &cfg.Trainer)
		if err := trainer.Train(ctx, cfg.Collector.OutputPath); err != nil {
			return fmt.Errorf("train model: %w", err)
		}
	}

	return nil
}

func initBatch(logger *zerolog.Logger, cfg *config.Config, db *postgres.DB, m *metrics.Metrics) *collector.Batch {
	directory := collector.NewCachedDirectory(
		postgres.NewDirectoryRepository(db),
		cfg.Collector.DirectoryCacheTTL,
	)
	graph := postgres.NewGraphRepository(db)
	feed := postgres.NewFeedRepository(db)

	c := collector.New(logger, &cfg.Collector, directory, graph, feed, feed, &cfg.Platform)

	return collector.NewBatch(logger, &cfg.Collector, c, feed).WithMetrics(m)
}

func serveMetrics(addr string, m *metrics.Metrics, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics listener failed")
	}
}
