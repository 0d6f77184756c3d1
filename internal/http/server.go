// Package http serves the ledger and settlement API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fairshare/internal/cache"
	"fairshare/internal/core"
	"fairshare/internal/log"
	"fairshare/internal/metrics"
	"fairshare/internal/settle"
	"fairshare/internal/snapshot"
)

// ChangePublisher notifies interested consumers that the ledger
// mutated. The AMQP client satisfies this; a nil publisher disables
// notifications.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, revision uint64, operation string) error
}

type Server struct {
	http.Server

	// mu serializes all ledger mutations and settings changes. The
	// ledger is a single-owner aggregate; one logical mutation at a
	// time.
	mu       sync.Mutex
	ledger   *core.Ledger
	currency string
	darkMode bool

	store     snapshot.Store
	publisher ChangePublisher
	metrics   *metrics.Registry

	rateLimiter *rateLimiter

	// Settlement results keyed by ledger revision. Mutations change
	// the revision, so stale entries age out instead of being
	// invalidated explicitly.
	summaryCache *cache.LRUCache[settle.Result]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and restores the ledger from the given
// snapshot, returning a ready-to-run server.
func NewServer(addr string, snap snapshot.Snapshot, store snapshot.Store, publisher ChangePublisher, reg *metrics.Registry) *Server {
	mux := http.NewServeMux()

	ledger := core.NewLedger()
	ledger.Restore(snap.Participants, snap.Expenses)

	currency := snap.CurrencyCode
	if currency == "" {
		currency = snapshot.DefaultCurrency
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:       ledger,
		currency:     currency,
		darkMode:     snap.DarkMode,
		store:        store,
		publisher:    publisher,
		metrics:      reg,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[settle.Result](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if reg != nil {
		mux.Handle("/metrics", reg.Handler())
	}

	mux.HandleFunc("/participants", s.withMiddleware(s.handleParticipants))
	mux.HandleFunc("/expenses", s.withMiddleware(s.handleExpenses))
	mux.HandleFunc("/clear", s.withMiddleware(s.handleClear))
	mux.HandleFunc("/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/summary/share", s.withMiddleware(s.handleSummaryShare))
	mux.HandleFunc("/currencies", s.withMiddleware(s.handleCurrencies))
	mux.HandleFunc("/settings", s.withMiddleware(s.handleSettings))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// snapshotLocked builds a snapshot of the current state. Callers must
// hold s.mu.
func (s *Server) snapshotLocked() snapshot.Snapshot {
	return snapshot.Snapshot{
		Participants: s.ledger.Participants(),
		Expenses:     s.ledger.Expenses(),
		CurrencyCode: s.currency,
		DarkMode:     s.darkMode,
	}
}

// persistLocked saves the current state and publishes a change
// notification. Callers must hold s.mu. A failed save is returned to
// the caller; a failed publish is only logged, consumers have a
// periodic fallback.
func (s *Server) persistLocked(ctx context.Context, operation string) error {
	snap := s.snapshotLocked()
	revision := s.ledger.Revision()

	if err := s.store.Save(ctx, snap); err != nil {
		return err
	}

	if s.publisher != nil {
		go func() {
			pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.publisher.PublishLedgerChanged(pctx, revision, operation); err != nil {
				slog.Warn("Failed to publish ledger change",
					log.FieldOperation, operation,
					log.FieldRevision, revision,
					log.FieldError, err)
			}
		}()
	}

	return nil
}

// computeSummary returns the settlement result for the current ledger,
// memoized by revision.
func (s *Server) computeSummary(ctx context.Context) (settle.Result, uint64) {
	s.mu.Lock()
	revision := s.ledger.Revision()
	participants := s.ledger.Participants()
	expenses := s.ledger.Expenses()
	s.mu.Unlock()

	key := strconv.FormatUint(revision, 10)
	if result, found := s.summaryCache.Get(key); found {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		slog.DebugContext(ctx, "Summary cache hit", log.FieldRevision, revision)
		return result, revision
	}

	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
		s.metrics.Computations.Inc()
	}
	result := settle.Compute(participants, expenses)
	s.summaryCache.Set(key, result)

	slog.DebugContext(ctx, "Summary computed",
		log.FieldRevision, revision,
		"participants", len(participants),
		"debts", len(result.Debts))

	return result, revision
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
