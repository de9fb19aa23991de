// Package worker drives the refresh cycle: fetch the raw table, run it
// through the engine, replace the stored snapshot, announce completion.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"homespend/internal/amqp"
	"homespend/internal/core"
	"homespend/internal/etl"
	applog "homespend/internal/log"
	"homespend/internal/source"
	"homespend/internal/storage"
)

// SnapshotStore is the slice of the repository the worker needs.
type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, txs []core.Transaction, rec storage.RefreshRecord) error
}

// CompletionPublisher announces finished refreshes. Optional: a nil
// publisher means completions are only logged.
type CompletionPublisher interface {
	PublishRefreshCompleted(ctx context.Context, msg *amqp.RefreshCompletedMessage) error
}

type RefreshWorker struct {
	fetcher   source.TableFetcher
	processor *etl.Processor
	store     SnapshotStore
	publisher CompletionPublisher
	logger    *applog.StructuredLogger
	now       func() time.Time
}

func NewRefreshWorker(fetcher source.TableFetcher, processor *etl.Processor, store SnapshotStore, publisher CompletionPublisher) *RefreshWorker {
	cfg := applog.DefaultConfig()
	cfg.Component = applog.ComponentWorker
	return &RefreshWorker{
		fetcher:   fetcher,
		processor: processor,
		store:     store,
		publisher: publisher,
		logger:    applog.NewStructuredLogger(applog.New(cfg)),
		now:       time.Now,
	}
}

// Refresh runs one full cycle and returns the resulting refresh record.
func (w *RefreshWorker) Refresh(ctx context.Context) (storage.RefreshRecord, error) {
	started := w.now()

	table, err := w.fetcher.FetchTable(ctx)
	if err != nil {
		w.logger.LogError(ctx, "Source fetch failed", err,
			applog.ComponentSource, applog.OpFetch,
			applog.NewFields().WithRefresh(w.sourceName(), 0, 0))
		return storage.RefreshRecord{}, fmt.Errorf("fetch source table: %w", err)
	}

	txs, kpis := w.processor.Process(table, started)

	var total float64
	for _, t := range txs {
		total += t.Amount
	}

	rec := storage.RefreshRecord{
		RefreshedAt: started,
		Source:      w.sourceName(),
		RowCount:    len(txs),
		TotalAmount: total,
	}

	if err := w.store.ReplaceSnapshot(ctx, txs, rec); err != nil {
		return storage.RefreshRecord{}, fmt.Errorf("replace snapshot: %w", err)
	}

	if w.publisher != nil {
		msg := amqp.NewRefreshCompletedMessage(rec.Source, rec.RowCount, rec.TotalAmount)
		if err := w.publisher.PublishRefreshCompleted(ctx, msg); err != nil {
			// The snapshot is already committed; losing the event is not fatal
			slog.ErrorContext(ctx, "Failed to publish refresh completed", "error", err)
		}
	}

	w.logger.LogRefreshCompleted(ctx, rec.Source, rec.RowCount, rec.TotalAmount)
	slog.DebugContext(ctx, "Refresh timings",
		"month_total", kpis.TotalAmount,
		"duration", time.Since(started).Round(time.Millisecond))

	return rec, nil
}

// HandleRefreshMessage processes a refresh request received over AMQP.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshRequestMessage) error {
	slog.InfoContext(ctx, "Processing refresh request",
		"reason", msg.Reason,
		"requested_by", msg.RequestedBy)

	if _, err := w.Refresh(ctx); err != nil {
		return fmt.Errorf("handle refresh request: %w", err)
	}
	return nil
}

// RunPeriodic refreshes immediately, then on every interval tick until the
// context is cancelled. Individual failures are logged and the loop keeps
// going.
func (w *RefreshWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if _, err := w.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic refresh", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled refresh failed", "error", err)
			}
		}
	}
}

func (w *RefreshWorker) sourceName() string {
	if n, ok := w.fetcher.(source.Name); ok {
		return n.Name()
	}
	return "unknown"
}
