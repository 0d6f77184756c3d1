package worker

import (
	"context"
	"errors"
	"testing"

	"fairshare/internal/amqp"
	"fairshare/internal/core"
	"fairshare/internal/export"
	"fairshare/internal/settle"
	"fairshare/internal/snapshot"
)

type stubStore struct {
	snap    snapshot.Snapshot
	loadErr error
}

func (s *stubStore) Load(ctx context.Context) (snapshot.Snapshot, error) {
	return s.snap, s.loadErr
}

func (s *stubStore) Save(ctx context.Context, snap snapshot.Snapshot) error { return nil }
func (s *stubStore) Close() error                                           { return nil }

type recordingExporter struct {
	name    string
	calls   int
	lastRes settle.Result
	err     error
}

func (r *recordingExporter) Name() string { return r.name }

func (r *recordingExporter) Export(ctx context.Context, snap snapshot.Snapshot, result settle.Result) error {
	r.calls++
	r.lastRes = result
	return r.err
}

func testWorker(snap snapshot.Snapshot, exporters ...export.SummaryExporter) *ExportWorker {
	return NewExportWorker(&stubStore{snap: snap}, exporters, nil)
}

func TestExportOnceComputesSettlement(t *testing.T) {
	snap := snapshot.Snapshot{
		Participants: []string{"Alice", "Bob"},
		Expenses: []core.Expense{
			{ID: "1", Payer: "Alice", Description: "Dinner", Amount: 100},
		},
		CurrencyCode: "EUR",
	}
	rec := &recordingExporter{name: "file"}
	w := testWorker(snap, rec)

	if err := w.ExportOnce(context.Background()); err != nil {
		t.Fatalf("ExportOnce: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("exporter calls = %d, want 1", rec.calls)
	}
	if len(rec.lastRes.Debts) != 1 || rec.lastRes.Debts[0].From != "Bob" {
		t.Errorf("debts = %+v, want Bob owing Alice", rec.lastRes.Debts)
	}
}

func TestExportOnceRunsAllExportersOnFailure(t *testing.T) {
	failing := &recordingExporter{name: "sheets", err: errors.New("quota exceeded")}
	ok := &recordingExporter{name: "file"}
	w := testWorker(snapshot.Empty(), failing, ok)

	err := w.ExportOnce(context.Background())
	if err == nil {
		t.Fatal("expected error from failing exporter")
	}
	if ok.calls != 1 {
		t.Error("second exporter was not run after first failed")
	}
}

func TestHandleChangeMessageSkipsStaleRevisions(t *testing.T) {
	rec := &recordingExporter{name: "file"}
	w := testWorker(snapshot.Empty(), rec)
	ctx := context.Background()

	if err := w.HandleChangeMessage(ctx, &amqp.LedgerChangedMessage{Revision: 5}); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}
	if err := w.HandleChangeMessage(ctx, &amqp.LedgerChangedMessage{Revision: 5}); err != nil {
		t.Fatalf("duplicate HandleChangeMessage: %v", err)
	}
	if err := w.HandleChangeMessage(ctx, &amqp.LedgerChangedMessage{Revision: 3}); err != nil {
		t.Fatalf("stale HandleChangeMessage: %v", err)
	}

	if rec.calls != 1 {
		t.Errorf("exporter calls = %d, want 1 (duplicates skipped)", rec.calls)
	}
}

func TestHandleChangeMessageAdvancesRevision(t *testing.T) {
	rec := &recordingExporter{name: "file"}
	w := testWorker(snapshot.Empty(), rec)
	ctx := context.Background()

	for _, rev := range []uint64{1, 2, 3} {
		if err := w.HandleChangeMessage(ctx, &amqp.LedgerChangedMessage{Revision: rev}); err != nil {
			t.Fatalf("HandleChangeMessage(%d): %v", rev, err)
		}
	}
	if rec.calls != 3 {
		t.Errorf("exporter calls = %d, want 3", rec.calls)
	}
}

func TestHandleChangeMessageDoesNotAdvanceOnFailure(t *testing.T) {
	rec := &recordingExporter{name: "file", err: errors.New("disk full")}
	w := testWorker(snapshot.Empty(), rec)
	ctx := context.Background()

	if err := w.HandleChangeMessage(ctx, &amqp.LedgerChangedMessage{Revision: 7}); err == nil {
		t.Fatal("expected error")
	}

	// After the failure clears, the same revision must be retryable.
	rec.err = nil
	if err := w.HandleChangeMessage(ctx, &amqp.LedgerChangedMessage{Revision: 7}); err != nil {
		t.Fatalf("retry HandleChangeMessage: %v", err)
	}
	if rec.calls != 2 {
		t.Errorf("exporter calls = %d, want 2", rec.calls)
	}
}
