// Package worker drives settlement summary exports, either on ledger
// change notifications or on a periodic fallback timer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fairshare/internal/amqp"
	"fairshare/internal/export"
	"fairshare/internal/log"
	"fairshare/internal/metrics"
	"fairshare/internal/settle"
	"fairshare/internal/snapshot"
)

// ExportWorker loads the current snapshot, computes the settlement
// plan and ships it to the configured export targets.
type ExportWorker struct {
	store     snapshot.Store
	exporters []export.SummaryExporter
	metrics   *metrics.Registry

	// Highest revision already exported, to drop stale or duplicate
	// change notifications.
	lastRevision atomic.Uint64
}

func NewExportWorker(store snapshot.Store, exporters []export.SummaryExporter, reg *metrics.Registry) *ExportWorker {
	return &ExportWorker{
		store:     store,
		exporters: exporters,
		metrics:   reg,
	}
}

// HandleChangeMessage processes a single ledger change notification.
// Revisions at or below the last exported one are acknowledged without
// re-exporting.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	last := w.lastRevision.Load()
	if msg.Revision != 0 && msg.Revision <= last {
		slog.DebugContext(ctx, "Skipping already exported revision",
			log.FieldRevision, msg.Revision,
			"last_exported", last)
		return nil
	}

	slog.InfoContext(ctx, "Processing ledger change notification",
		log.FieldRevision, msg.Revision,
		log.FieldOperation, msg.Operation)

	if err := w.ExportOnce(ctx); err != nil {
		return err
	}

	w.lastRevision.Store(msg.Revision)
	return nil
}

// ExportOnce loads the snapshot, computes the settlement and runs every
// exporter. Exporter failures are collected rather than aborting the
// remaining targets.
func (w *ExportWorker) ExportOnce(ctx context.Context) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	result := settle.Compute(snap.Participants, snap.Expenses)
	if w.metrics != nil {
		w.metrics.Computations.Inc()
	}

	var errs []error
	for _, exp := range w.exporters {
		if err := exp.Export(ctx, snap, result); err != nil {
			slog.ErrorContext(ctx, "Summary export failed",
				"target", exp.Name(), log.FieldError, err)
			if w.metrics != nil {
				w.metrics.Exports.WithLabelValues(exp.Name(), "error").Inc()
			}
			errs = append(errs, fmt.Errorf("%s: %w", exp.Name(), err))
			continue
		}
		if w.metrics != nil {
			w.metrics.Exports.WithLabelValues(exp.Name(), "ok").Inc()
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("export summary: %w", errors.Join(errs...))
	}

	slog.InfoContext(ctx, "Settlement summary exported",
		"targets", len(w.exporters),
		"participants", len(snap.Participants),
		"debts", len(result.Debts))

	return nil
}

// RunPeriodic exports on a fixed interval until the context is
// cancelled. This is the fallback path for lost change notifications.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic export", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", log.FieldError, err)
			}
		}
	}
}
