// Package ingest moves market data from a provider into the snapshot store.
// The three entry points (Sync, Backfill, Rebuild) share one write lock so
// concurrent triggers from the API, the CLI, and the scheduler cannot
// interleave writes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/skinfolio/skinfolio/internal/catalog"
	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/provider"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const defaultWorkers = 4

// Notifier receives every snapshot written by a sync run. Used to feed the
// websocket tick stream; nil is fine.
type Notifier func(contracts.Snapshot)

// Pipeline orchestrates fetch + persist for the tracked universe.
type Pipeline struct {
	items    contracts.ItemRepository
	snaps    contracts.SnapshotRepository
	provider provider.Provider
	logger   *logger.Logger

	workers      int
	fetchTimeout time.Duration

	writeMu sync.Mutex
	now     func() time.Time
	notify  Notifier
}

// New creates the pipeline. workers bounds provider fan-out; fetchTimeout is
// applied per item so one hung upstream call cannot stall a whole run.
func New(items contracts.ItemRepository, snaps contracts.SnapshotRepository, prov provider.Provider, log *logger.Logger, workers int, fetchTimeout time.Duration) *Pipeline {
	if workers < 1 {
		workers = defaultWorkers
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 20 * time.Second
	}
	return &Pipeline{
		items:        items,
		snaps:        snaps,
		provider:     prov,
		logger:       log,
		workers:      workers,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}

// WithNow overrides the clock for tests.
func (p *Pipeline) WithNow(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// SetNotifier registers the per-snapshot hook.
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notify = n
}

// EnsureUniverse upserts the catalog into the item store and returns the
// resulting universe. Safe to call on every startup.
func (p *Pipeline) EnsureUniverse(ctx context.Context) ([]contracts.Item, error) {
	resolver, _ := p.provider.(provider.MediaResolver)

	out := make([]contracts.Item, 0, len(catalog.Universe))
	for _, entry := range catalog.Universe {
		item := contracts.Item{
			Name:     entry.Name,
			Rarity:   entry.Rarity,
			Category: entry.Category,
			Thesis:   entry.Thesis,
		}
		if resolver != nil {
			item.ListingURL = resolver.ListingURL(entry.Name)
		}

		saved, err := p.items.Upsert(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("upsert item %q: %w", entry.Name, err)
		}
		out = append(out, saved)
	}
	return out, nil
}

// Sync fetches the current price for every tracked item and writes today's
// snapshots. Per-item fetch failures are counted, not raised; the run
// succeeds as long as the store cooperates.
func (p *Pipeline) Sync(ctx context.Context) (contracts.SyncResult, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	return p.syncLocked(ctx)
}

func (p *Pipeline) syncLocked(ctx context.Context) (contracts.SyncResult, error) {
	today := contracts.Day(p.now())
	result := contracts.SyncResult{Date: today}

	items, err := p.items.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list items: %w", err)
	}

	type quoteResult struct {
		item  contracts.Item
		quote provider.Quote
		err   error
	}

	jobs := make(chan contracts.Item)
	results := make(chan quoteResult, len(items))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
				quote, err := p.provider.FetchCurrent(fetchCtx, item)
				cancel()
				if err != nil && !contracts.IsFetch(err) {
					err = contracts.NewFetchError(item.Name, err)
				}
				results <- quoteResult{item: item, quote: quote, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			p.logger.WithError(r.err).WithField("item", r.item.Name).Warn("sync fetch failed")
			result.Failed++
			result.FailedItems = append(result.FailedItems, r.item.Name)
			continue
		}

		snap := contracts.Snapshot{
			ItemID:    r.item.ID,
			Date:      today,
			PriceUSD:  r.quote.PriceUSD,
			Volume24h: r.quote.Volume24h,
			Source:    p.provider.Source(),
			SourceRef: r.quote.SourceRef,
			Verified:  provider.SanePrice(r.quote.PriceUSD),
		}
		saved, err := p.snaps.Upsert(ctx, snap)
		if err != nil {
			return result, fmt.Errorf("upsert snapshot for %q: %w", r.item.Name, err)
		}
		result.Created++
		if p.notify != nil {
			p.notify(saved)
		}
	}

	sort.Strings(result.FailedItems)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	p.logger.WithFields(map[string]interface{}{
		"date":    today.Format("2006-01-02"),
		"created": result.Created,
		"failed":  result.Failed,
	}).Info("sync complete")
	return result, nil
}

// Backfill fetches up to days of history per item and fills the gaps.
// Points already stored verified for the same (item, date) are left alone,
// which makes repeated backfills over the same window no-ops.
func (p *Pipeline) Backfill(ctx context.Context, days int) (contracts.BackfillResult, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	return p.backfillLocked(ctx, days)
}

func (p *Pipeline) backfillLocked(ctx context.Context, days int) (contracts.BackfillResult, error) {
	if days < 1 {
		return contracts.BackfillResult{}, &contracts.ValidationError{
			Field: "days", Reason: "must be at least 1",
		}
	}
	result := contracts.BackfillResult{Days: days}

	items, err := p.items.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list items: %w", err)
	}

	type historyResult struct {
		item   contracts.Item
		points []provider.PricePoint
		err    error
	}

	jobs := make(chan contracts.Item)
	results := make(chan historyResult, len(items))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
				points, err := p.provider.FetchHistory(fetchCtx, item, days)
				cancel()
				if err != nil && !contracts.IsFetch(err) {
					err = contracts.NewFetchError(item.Name, err)
				}
				results <- historyResult{item: item, points: points, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			p.logger.WithError(r.err).WithField("item", r.item.Name).Warn("backfill fetch failed")
			result.Failed++
			result.FailedItems = append(result.FailedItems, r.item.Name)
			continue
		}

		created, err := p.storeHistory(ctx, r.item, r.points)
		if err != nil {
			return result, err
		}
		result.Created += created
	}

	sort.Strings(result.FailedItems)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	p.logger.WithFields(map[string]interface{}{
		"days":    days,
		"created": result.Created,
		"failed":  result.Failed,
	}).Info("backfill complete")
	return result, nil
}

// storeHistory writes one item's fetched history, skipping dates that already
// hold a verified row.
func (p *Pipeline) storeHistory(ctx context.Context, item contracts.Item, points []provider.PricePoint) (int, error) {
	existing, err := p.snaps.History(ctx, item.ID)
	if err != nil {
		return 0, fmt.Errorf("load history for %q: %w", item.Name, err)
	}
	verifiedDays := make(map[int64]bool, len(existing))
	for _, snap := range existing {
		if snap.Verified {
			verifiedDays[snap.Date.Unix()] = true
		}
	}

	created := 0
	for _, point := range points {
		date := contracts.Day(point.Date)
		if verifiedDays[date.Unix()] {
			continue
		}

		snap := contracts.Snapshot{
			ItemID:    item.ID,
			Date:      date,
			PriceUSD:  point.PriceUSD,
			Volume24h: point.Volume24h,
			Source:    contracts.SourceBackfill,
			Verified:  provider.SanePrice(point.PriceUSD),
		}
		if _, err := p.snaps.Upsert(ctx, snap); err != nil {
			var verr *contracts.ValidationError
			if errors.As(err, &verr) {
				p.logger.WithError(err).WithField("item", item.Name).Warn("skipping malformed history point")
				continue
			}
			return created, fmt.Errorf("upsert history for %q: %w", item.Name, err)
		}
		created++
	}
	return created, nil
}

// Rebuild wipes every stored snapshot, backfills days of history, and runs a
// fresh sync on top. The whole sequence holds the write lock.
func (p *Pipeline) Rebuild(ctx context.Context, days int) (contracts.RebuildResult, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	var result contracts.RebuildResult

	deleted, err := p.snaps.DeleteBySource(ctx, contracts.AllSources())
	if err != nil {
		return result, fmt.Errorf("delete snapshots: %w", err)
	}
	result.Deleted = deleted

	backfill, err := p.backfillLocked(ctx, days)
	if err != nil {
		return result, err
	}
	result.HistoricalCreated = backfill.Created

	syncRes, err := p.syncLocked(ctx)
	if err != nil {
		return result, err
	}
	result.LatestCreated = syncRes.Created

	p.logger.WithFields(map[string]interface{}{
		"deleted":    result.Deleted,
		"historical": result.HistoricalCreated,
		"latest":     result.LatestCreated,
	}).Info("rebuild complete")
	return result, nil
}

// SeedIfNeeded backfills and syncs when the store holds less coverage than
// seedDays asks for. Called once at startup so a fresh deployment serves
// rankings immediately.
func (p *Pipeline) SeedIfNeeded(ctx context.Context, seedDays int) error {
	if seedDays < 1 {
		return nil
	}

	have, err := p.snaps.DistinctDays(ctx)
	if err != nil {
		return fmt.Errorf("count distinct days: %w", err)
	}
	if have >= seedDays {
		return nil
	}

	p.logger.WithFields(map[string]interface{}{
		"have": have,
		"want": seedDays,
	}).Info("seeding snapshot store")

	if _, err := p.Backfill(ctx, seedDays); err != nil {
		return fmt.Errorf("seed backfill: %w", err)
	}
	if _, err := p.Sync(ctx); err != nil {
		return fmt.Errorf("seed sync: %w", err)
	}
	return nil
}

// EnrichImages fills missing image URLs for items whose provider can resolve
// them. Returns how many items were updated.
func (p *Pipeline) EnrichImages(ctx context.Context) (int, error) {
	resolver, ok := p.provider.(provider.MediaResolver)
	if !ok {
		return 0, nil
	}

	items, err := p.items.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	updated := 0
	for _, item := range items {
		if item.ImageURL != "" {
			continue
		}

		imageURL, err := resolver.ResolveImageURL(ctx, item.Name)
		if err != nil {
			p.logger.WithError(err).WithField("item", item.Name).Warn("image resolution failed")
			continue
		}
		if imageURL == "" {
			continue
		}

		listingURL := item.ListingURL
		if listingURL == "" {
			listingURL = resolver.ListingURL(item.Name)
		}
		if err := p.items.UpdateMedia(ctx, item.ID, imageURL, listingURL); err != nil {
			return updated, fmt.Errorf("update media for %q: %w", item.Name, err)
		}
		updated++
	}
	return updated, nil
}
