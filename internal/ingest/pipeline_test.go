package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/skinfolio/skinfolio/internal/catalog"
	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/provider"
	"github.com/skinfolio/skinfolio/internal/store"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

func testNow() time.Time {
	return time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
}

// flaky wraps the mock provider and fails specific items, mimicking a
// provider that serves most of the universe but chokes on a few names.
type flaky struct {
	inner provider.Provider
	fail  map[string]bool
}

func (f *flaky) Source() contracts.Source { return f.inner.Source() }

func (f *flaky) FetchCurrent(ctx context.Context, item contracts.Item) (provider.Quote, error) {
	if f.fail[item.Name] {
		return provider.Quote{}, contracts.NewFetchError(item.Name, fmt.Errorf("synthetic outage"))
	}
	return f.inner.FetchCurrent(ctx, item)
}

func (f *flaky) FetchHistory(ctx context.Context, item contracts.Item, days int) ([]provider.PricePoint, error) {
	if f.fail[item.Name] {
		return nil, contracts.NewFetchError(item.Name, fmt.Errorf("synthetic outage"))
	}
	return f.inner.FetchHistory(ctx, item, days)
}

func newTestPipeline(t *testing.T, prov provider.Provider) (*Pipeline, *store.Memory) {
	t.Helper()
	mem := store.NewMemory().WithNow(testNow)
	p := New(mem.Items(), mem.Snapshots(), prov, logger.Nop(), 3, time.Second).WithNow(testNow)

	if _, err := p.EnsureUniverse(context.Background()); err != nil {
		t.Fatalf("EnsureUniverse() error = %v", err)
	}
	return p, mem
}

func TestEnsureUniverseIdempotent(t *testing.T) {
	ctx := context.Background()
	p, mem := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	again, err := p.EnsureUniverse(ctx)
	if err != nil {
		t.Fatalf("EnsureUniverse() error = %v", err)
	}
	if len(again) != len(catalog.Universe) {
		t.Errorf("universe size = %d, want %d", len(again), len(catalog.Universe))
	}

	items, _ := mem.List(ctx)
	if len(items) != len(catalog.Universe) {
		t.Errorf("stored items = %d, want %d", len(items), len(catalog.Universe))
	}
}

func TestSyncWritesOneSnapshotPerItem(t *testing.T) {
	ctx := context.Background()
	p, mem := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	result, err := p.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if result.Created != len(catalog.Universe) {
		t.Errorf("Created = %d, want %d", result.Created, len(catalog.Universe))
	}
	if result.Failed != 0 {
		t.Errorf("Failed = %d, want 0", result.Failed)
	}
	if !result.Date.Equal(contracts.Day(testNow())) {
		t.Errorf("Date = %v, want today", result.Date)
	}

	summary, _ := mem.SnapshotAuditSummary(ctx)
	if summary.TotalSnapshots != int64(len(catalog.Universe)) {
		t.Errorf("stored rows = %d, want %d", summary.TotalSnapshots, len(catalog.Universe))
	}

	// A second run the same day overwrites instead of duplicating.
	if _, err := p.Sync(ctx); err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	summary, _ = mem.SnapshotAuditSummary(ctx)
	if summary.TotalSnapshots != int64(len(catalog.Universe)) {
		t.Errorf("rows after second sync = %d, want %d", summary.TotalSnapshots, len(catalog.Universe))
	}
	if summary.DistinctDays != 1 {
		t.Errorf("DistinctDays = %d, want 1", summary.DistinctDays)
	}
}

func TestSyncToleratesPerItemFailures(t *testing.T) {
	ctx := context.Background()
	failing := catalog.Universe[3].Name
	prov := &flaky{
		inner: provider.NewMock().WithNow(testNow),
		fail:  map[string]bool{failing: true},
	}
	p, _ := newTestPipeline(t, prov)

	result, err := p.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if result.Created != len(catalog.Universe)-1 {
		t.Errorf("Created = %d, want %d", result.Created, len(catalog.Universe)-1)
	}
	if result.Failed != 1 || len(result.FailedItems) != 1 || result.FailedItems[0] != failing {
		t.Errorf("failure accounting wrong: %+v", result)
	}
}

func TestBackfillIdempotent(t *testing.T) {
	ctx := context.Background()
	p, mem := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	const days = 10
	first, err := p.Backfill(ctx, days)
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	want := days * len(catalog.Universe)
	if first.Created != want {
		t.Errorf("first Backfill Created = %d, want %d", first.Created, want)
	}

	second, err := p.Backfill(ctx, days)
	if err != nil {
		t.Fatalf("second Backfill() error = %v", err)
	}
	if second.Created != 0 {
		t.Errorf("second Backfill Created = %d, want 0", second.Created)
	}

	summary, _ := mem.SnapshotAuditSummary(ctx)
	if summary.DistinctDays != days {
		t.Errorf("DistinctDays = %d, want %d", summary.DistinctDays, days)
	}
	if summary.Verified != int64(want) {
		t.Errorf("Verified = %d, want %d", summary.Verified, want)
	}
}

func TestBackfillRejectsBadWindow(t *testing.T) {
	p, _ := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	_, err := p.Backfill(context.Background(), 0)
	if !contracts.IsValidation(err) {
		t.Errorf("Backfill(0) error = %v, want ValidationError", err)
	}
}

func TestRebuild(t *testing.T) {
	ctx := context.Background()
	p, mem := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	if _, err := p.Backfill(ctx, 10); err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	before, _ := mem.SnapshotAuditSummary(ctx)

	result, err := p.Rebuild(ctx, 5)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	if result.Deleted != before.TotalSnapshots {
		t.Errorf("Deleted = %d, want %d", result.Deleted, before.TotalSnapshots)
	}
	if result.HistoricalCreated != 5*len(catalog.Universe) {
		t.Errorf("HistoricalCreated = %d, want %d", result.HistoricalCreated, 5*len(catalog.Universe))
	}
	if result.LatestCreated != len(catalog.Universe) {
		t.Errorf("LatestCreated = %d, want %d", result.LatestCreated, len(catalog.Universe))
	}

	after, _ := mem.SnapshotAuditSummary(ctx)
	if after.DistinctDays != 5 {
		t.Errorf("DistinctDays after rebuild = %d, want 5", after.DistinctDays)
	}
}

func TestSeedIfNeeded(t *testing.T) {
	ctx := context.Background()
	p, mem := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	if err := p.SeedIfNeeded(ctx, 5); err != nil {
		t.Fatalf("SeedIfNeeded() error = %v", err)
	}

	have, _ := mem.SnapshotDistinctDays(ctx)
	if have != 5 {
		t.Errorf("distinct days after seed = %d, want 5", have)
	}

	// Already covered; a second call must not grow the window.
	if err := p.SeedIfNeeded(ctx, 5); err != nil {
		t.Fatalf("second SeedIfNeeded() error = %v", err)
	}
	summary, _ := mem.SnapshotAuditSummary(ctx)
	if summary.DistinctDays != 5 {
		t.Errorf("distinct days changed on second seed: %d", summary.DistinctDays)
	}
}

func TestSyncNotifiesStream(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, provider.NewMock().WithNow(testNow))

	var ticks []contracts.Snapshot
	p.SetNotifier(func(snap contracts.Snapshot) {
		ticks = append(ticks, snap)
	})

	result, err := p.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(ticks) != result.Created {
		t.Errorf("notifier calls = %d, want %d", len(ticks), result.Created)
	}
}
