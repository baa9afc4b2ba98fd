package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skinfolio/skinfolio/internal/api/handlers"
	"github.com/skinfolio/skinfolio/internal/catalog"
	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/ingest"
	"github.com/skinfolio/skinfolio/internal/provider"
	"github.com/skinfolio/skinfolio/internal/scoring"
	"github.com/skinfolio/skinfolio/internal/simulation"
	"github.com/skinfolio/skinfolio/internal/store"
	"github.com/skinfolio/skinfolio/internal/strategyconfig"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

func apiNow() time.Time {
	return time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
}

// newTestServer wires the full stack on the in-memory store with the mock
// provider and seeds a small history window.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	log := logger.Nop()
	cfg := strategyconfig.Default()
	mem := store.NewMemory().WithNow(apiNow)
	prov := provider.NewMock().WithNow(apiNow)

	pipeline := ingest.New(mem.Items(), mem.Snapshots(), prov, log, 2, time.Second).WithNow(apiNow)
	if _, err := pipeline.EnsureUniverse(ctx); err != nil {
		t.Fatalf("EnsureUniverse() error = %v", err)
	}
	if _, err := pipeline.Backfill(ctx, 10); err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	scoringSvc := scoring.NewService(mem.Items(), mem.Snapshots(), cfg, log)
	sim := simulation.New(mem.Items(), mem.Snapshots(), scoringSvc.Engine(), cfg, log)
	stream := NewTickStream(log)
	pipeline.SetNotifier(stream.Broadcast)

	router := NewRouter(
		handlers.NewMarketHandler(mem.Items(), mem.Snapshots(), log),
		handlers.NewIngestHandler(pipeline, log),
		handlers.NewStrategyHandler(scoringSvc, sim, log),
		stream,
		log,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	var body map[string]interface{}
	if status := getJSON(t, server.URL+"/health", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("health body = %v", body)
	}
}

func TestItemsEndpoint(t *testing.T) {
	server := newTestServer(t)

	var items []map[string]interface{}
	if status := getJSON(t, server.URL+"/items", &items); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(items) != len(catalog.Universe) {
		t.Errorf("items = %d, want %d", len(items), len(catalog.Universe))
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server := newTestServer(t)

	var history []map[string]interface{}
	if status := getJSON(t, server.URL+"/history/1", &history); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(history) != 10 {
		t.Errorf("history rows = %d, want 10", len(history))
	}

	if status := getJSON(t, server.URL+"/history/9999", nil); status != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", status)
	}
	if status := getJSON(t, server.URL+"/history/abc", nil); status != http.StatusNotFound {
		// The route only matches numeric ids.
		t.Errorf("non-numeric id status = %d, want 404", status)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	server := newTestServer(t)

	var records []contracts.ScoreRecord
	if status := getJSON(t, server.URL+"/recommendations?limit=3", &records); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for i, rec := range records {
		if rec.Rank != i+1 {
			t.Errorf("record %d rank = %d", i, rec.Rank)
		}
		if rec.Rationale == "" {
			t.Errorf("record %d missing rationale", i)
		}
	}

	if status := getJSON(t, server.URL+"/recommendations?limit=bogus", nil); status != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", status)
	}
}

func TestSimulationEndpoint(t *testing.T) {
	server := newTestServer(t)

	var result contracts.SimResult
	if status := getJSON(t, server.URL+"/simulation/portfolio?capital=5000&top_n=3", &result); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if result.InitialCapital != 5000 {
		t.Errorf("InitialCapital = %v", result.InitialCapital)
	}
	if len(result.Points) == 0 {
		t.Error("simulation returned no points over seeded history")
	}
	if result.MaxDrawdownPct > 0 {
		t.Errorf("MaxDrawdownPct = %v, want <= 0", result.MaxDrawdownPct)
	}

	if status := getJSON(t, server.URL+"/simulation/portfolio?capital=-5", nil); status != http.StatusBadRequest {
		t.Errorf("negative capital status = %d, want 400", status)
	}
}

func TestAuditEndpoints(t *testing.T) {
	server := newTestServer(t)

	var summary contracts.AuditSummary
	if status := getJSON(t, server.URL+"/audit/summary", &summary); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if summary.TotalSnapshots == 0 || summary.DistinctDays != 10 {
		t.Errorf("summary = %+v", summary)
	}

	var recent []map[string]interface{}
	if status := getJSON(t, server.URL+"/audit/snapshots?limit=5", &recent); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(recent) != 5 {
		t.Errorf("recent rows = %d, want 5", len(recent))
	}
}

func TestTrackEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/track", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /track error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result contracts.SyncResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Created != len(catalog.Universe) {
		t.Errorf("Created = %d, want %d", result.Created, len(catalog.Universe))
	}
}

func TestBackfillEndpointValidation(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/backfill", "application/json",
		strings.NewReader(`{"days": -2}`))
	if err != nil {
		t.Fatalf("POST /backfill error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
