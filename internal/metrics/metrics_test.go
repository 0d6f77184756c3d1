package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.ObserveMutation("add_participant", nil)
	r.ObserveMutation("add_expense", errors.New("boom"))
	r.Computations.Inc()
	r.CacheHits.Inc()
	r.Exports.WithLabelValues("file", "ok").Inc()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		`fairshare_ledger_mutations_total{operation="add_participant",status="ok"} 1`,
		`fairshare_ledger_mutations_total{operation="add_expense",status="error"} 1`,
		`fairshare_settlement_computations_total 1`,
		`fairshare_summary_cache_hits_total 1`,
		`fairshare_exports_total{status="ok",target="file"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestSeparateRegistriesAreIndependent(t *testing.T) {
	// Two registries must not collide; each owns its own collectors.
	a := NewRegistry()
	b := NewRegistry()
	a.Computations.Inc()

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "fairshare_settlement_computations_total 1") {
		t.Error("registry b reported registry a's counter")
	}
}
