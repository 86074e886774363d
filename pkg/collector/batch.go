package collector

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MetricsRecorder abstracts the batch runner's observability hooks so
// the package stays decoupled from the metrics backend.
type MetricsRecorder interface {
	RecordUserProcessed()
	RecordUserSkipped(reason string)
	RecordRowsWritten(n int)
	ObserveRunDuration(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordUserProcessed()             {}
func (noopMetrics) RecordUserSkipped(string)         {}
func (noopMetrics) RecordRowsWritten(int)            {}
func (noopMetrics) ObserveRunDuration(time.Duration) {}

// Batch fans the collection pass out over the user population. Each
// user gets an independent accumulator lifecycle, so passes run in
// parallel with no shared mutable state beyond the row writer and the
// report. Per-user failures are isolated: logged, counted, and the rest
// of the population continues.
type Batch struct {
	collector *Collector
	feed      FeedSource
	cfg       *Config
	logger    *zerolog.Logger
	metrics   MetricsRecorder
}

func NewBatch(logger *zerolog.Logger, cfg *Config, collector *Collector, feed FeedSource) *Batch {
	return &Batch{
		collector: collector,
		feed:      feed,
		cfg:       cfg,
		logger:    logger,
		metrics:   noopMetrics{},
	}
}

// WithMetrics sets the metrics recorder.
func (b *Batch) WithMetrics(m MetricsRecorder) *Batch {
	b.metrics = m
	return b
}

// Run executes one full collection run over all active users and
// writes rows to the configured output path.
func (b *Batch) Run(ctx context.Context, mode Mode) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.RunTimeout)
	defer cancel()

	out, err := os.Create(b.cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	writer := NewFeatureWriter(out, b.cfg.TopParticipants, mode == ModeTraining)

	report, err := b.RunTo(ctx, mode, writer)
	if err != nil {
		return report, err
	}

	if err := writer.Flush(); err != nil {
		return report, fmt.Errorf("flush feature rows: %w", err)
	}
	return report, nil
}

// RunTo is Run against a caller-provided writer.
func (b *Batch) RunTo(ctx context.Context, mode Mode, writer *FeatureWriter) (*Report, error) {
	users, err := b.feed.ActiveUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	report := newReport(uuid.New().String(), mode)

	b.logger.Info().
		Str("run_id", report.RunID).
		Str("mode", string(mode)).
		Int("users", len(users)).
		Msg("Starting collection run")

	pool := pond.NewPool(b.cfg.MaxUserConcurrency)

	for _, userID := range users {
		pool.Submit(func() {
			if ctx.Err() != nil {
				report.recordSkip(userID, ctx.Err())
				b.metrics.RecordUserSkipped("canceled")
				return
			}

			stats, err := b.collector.CollectUser(ctx, userID, mode, writer)
			if err != nil {
				b.logger.Error().Err(err).
					Str("run_id", report.RunID).
					Str("user_id", userID).
					Msg("User pass failed")
				report.recordSkip(userID, err)
				b.metrics.RecordUserSkipped("error")
				return
			}

			report.recordUser(stats)
			b.metrics.RecordUserProcessed()
			b.metrics.RecordRowsWritten(stats.Rows)
		})
	}

	pool.StopAndWait()
	report.finish()
	b.metrics.ObserveRunDuration(report.Finished.Sub(report.Started))

	b.logger.Info().
		Str("run_id", report.RunID).
		Int("users_processed", report.UsersProcessed()).
		Int("users_skipped", report.UsersSkipped()).
		Int("activities_processed", report.ActivitiesProcessed()).
		Int("activities_skipped", report.ActivitiesSkipped()).
		Int("rows_written", report.RowsWritten()).
		Msg("Collection run finished")

	return report, nil
}

// RunPeriodically repeats runs at the configured interval with a small
// jitter until the context is canceled. Used by the long-running
// collector service; one-shot invocations call Run directly.
func (b *Batch) RunPeriodically(ctx context.Context, mode Mode) error {
	if b.cfg.Interval <= 0 {
		return fmt.Errorf("periodic runs require a positive interval, got %s", b.cfg.Interval)
	}

	for {
		if _, err := b.Run(ctx, mode); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error().Err(err).Msg("Collection run failed, will retry next interval")
		}

		timer := time.NewTimer(jittered(b.cfg.Interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
