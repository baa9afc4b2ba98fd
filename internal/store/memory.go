package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// Memory is an in-process implementation of both repositories. It backs
// tests and offline tooling; the write contract (validation, overwrite
// semantics, delete transactionality) matches the PostgreSQL store exactly.
type Memory struct {
	mu sync.RWMutex

	nextID int64
	items  map[int64]contracts.Item
	byName map[string]int64

	// snapshots[itemID][dayUnix]
	snapshots map[int64]map[int64]contracts.Snapshot

	// Maintained counters so audit queries stay O(sources) instead of
	// rescanning rows.
	total    int64
	verified int64
	bySource map[contracts.Source]int64
	byDay    map[int64]int64

	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:    1,
		items:     make(map[int64]contracts.Item),
		byName:    make(map[string]int64),
		snapshots: make(map[int64]map[int64]contracts.Snapshot),
		bySource:  make(map[contracts.Source]int64),
		byDay:     make(map[int64]int64),
		now:       time.Now,
	}
}

// WithNow overrides the clock used for future-date validation. Test hook.
func (m *Memory) WithNow(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Upsert implements contracts.ItemRepository.
func (m *Memory) Upsert(_ context.Context, item contracts.Item) (contracts.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byName[item.Name]; ok {
		existing := m.items[id]
		if existing.Rarity == "" {
			existing.Rarity = item.Rarity
		}
		if existing.Category == "" {
			existing.Category = item.Category
		}
		if existing.ImageURL == "" {
			existing.ImageURL = item.ImageURL
		}
		if existing.ListingURL == "" {
			existing.ListingURL = item.ListingURL
		}
		if existing.Thesis == "" {
			existing.Thesis = item.Thesis
		}
		m.items[id] = existing
		return existing, nil
	}

	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	m.byName[item.Name] = item.ID
	return item, nil
}

// GetByID implements contracts.ItemRepository.
func (m *Memory) GetByID(_ context.Context, id int64) (*contracts.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	out := item
	return &out, nil
}

// GetByName implements contracts.ItemRepository.
func (m *Memory) GetByName(_ context.Context, name string) (*contracts.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	out := m.items[id]
	return &out, nil
}

// List implements contracts.ItemRepository, ordered by name.
func (m *Memory) List(_ context.Context) ([]contracts.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]contracts.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// UpdateMedia implements contracts.ItemRepository.
func (m *Memory) UpdateMedia(_ context.Context, id int64, imageURL, listingURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return contracts.ErrNotFound
	}
	if imageURL != "" {
		item.ImageURL = imageURL
	}
	if listingURL != "" {
		item.ListingURL = listingURL
	}
	m.items[id] = item
	return nil
}

// UpsertSnapshot implements contracts.SnapshotRepository.Upsert via the
// embedded adapter below; named methods keep the two interfaces apart on
// the same struct.
func (m *Memory) UpsertSnapshot(_ context.Context, snap contracts.Snapshot) (contracts.Snapshot, error) {
	if err := validateSnapshot(snap, m.now()); err != nil {
		return contracts.Snapshot{}, err
	}
	snap.Date = contracts.Day(snap.Date)
	day := snap.Date.Unix()

	m.mu.Lock()
	defer m.mu.Unlock()

	perItem, ok := m.snapshots[snap.ItemID]
	if !ok {
		perItem = make(map[int64]contracts.Snapshot)
		m.snapshots[snap.ItemID] = perItem
	}

	if prev, exists := perItem[day]; exists {
		m.bySource[prev.Source]--
		if prev.Verified {
			m.verified--
		}
	} else {
		m.total++
		m.byDay[day]++
	}

	perItem[day] = snap
	m.bySource[snap.Source]++
	if snap.Verified {
		m.verified++
	}
	return snap, nil
}

// SnapshotHistory returns the item's snapshots ascending by date.
func (m *Memory) SnapshotHistory(_ context.Context, itemID int64) ([]contracts.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	perItem := m.snapshots[itemID]
	snaps := make([]contracts.Snapshot, 0, len(perItem))
	for _, snap := range perItem {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	return snaps, nil
}

// LatestSnapshot returns the most recent snapshot or nil.
func (m *Memory) LatestSnapshot(ctx context.Context, itemID int64) (*contracts.Snapshot, error) {
	snaps, _ := m.SnapshotHistory(ctx, itemID)
	if len(snaps) == 0 {
		return nil, nil
	}
	out := snaps[len(snaps)-1]
	return &out, nil
}

// AllSnapshotsAscending returns every snapshot ordered by date then item.
func (m *Memory) AllSnapshotsAscending(_ context.Context) ([]contracts.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snaps []contracts.Snapshot
	for _, perItem := range m.snapshots {
		for _, snap := range perItem {
			snaps = append(snaps, snap)
		}
	}
	sort.Slice(snaps, func(i, j int) bool {
		if !snaps[i].Date.Equal(snaps[j].Date) {
			return snaps[i].Date.Before(snaps[j].Date)
		}
		return snaps[i].ItemID < snaps[j].ItemID
	})
	return snaps, nil
}

// RecentSnapshots returns the newest rows, newest first.
func (m *Memory) RecentSnapshots(ctx context.Context, limit int) ([]contracts.Snapshot, error) {
	snaps, _ := m.AllSnapshotsAscending(ctx)
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

// DeleteSnapshotsBySource removes rows by source class. The whole mutation
// happens under one lock hold, mirroring the SQL transaction.
func (m *Memory) DeleteSnapshotsBySource(_ context.Context, sources []contracts.Source) (int64, error) {
	doomed := make(map[contracts.Source]bool, len(sources))
	for _, src := range sources {
		doomed[src] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for itemID, perItem := range m.snapshots {
		for day, snap := range perItem {
			if !doomed[snap.Source] {
				continue
			}
			delete(perItem, day)
			deleted++
			m.total--
			m.bySource[snap.Source]--
			if snap.Verified {
				m.verified--
			}
			m.byDay[day]--
			if m.byDay[day] == 0 {
				delete(m.byDay, day)
			}
		}
		if len(perItem) == 0 {
			delete(m.snapshots, itemID)
		}
	}
	return deleted, nil
}

// SnapshotDistinctDays counts distinct snapshot dates.
func (m *Memory) SnapshotDistinctDays(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byDay), nil
}

// SnapshotAuditSummary assembles the audit view from maintained counters.
func (m *Memory) SnapshotAuditSummary(_ context.Context) (contracts.AuditSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := contracts.AuditSummary{
		TotalSnapshots: m.total,
		DistinctDays:   len(m.byDay),
		Verified:       m.verified,
		Unverified:     m.total - m.verified,
	}

	var minDay, maxDay int64
	first := true
	for day := range m.byDay {
		if first || day < minDay {
			minDay = day
		}
		if first || day > maxDay {
			maxDay = day
		}
		first = false
	}
	if !first {
		fd := time.Unix(minDay, 0).UTC()
		ld := time.Unix(maxDay, 0).UTC()
		summary.FirstDate = &fd
		summary.LastDate = &ld
	}

	for src, count := range m.bySource {
		if count > 0 {
			summary.SourceBreakdown = append(summary.SourceBreakdown,
				contracts.SourceCount{Source: src, Count: count})
		}
	}
	sort.Slice(summary.SourceBreakdown, func(i, j int) bool {
		a, b := summary.SourceBreakdown[i], summary.SourceBreakdown[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Source < b.Source
	})
	return summary, nil
}

// Snapshots returns a contracts.SnapshotRepository view of the store.
func (m *Memory) Snapshots() contracts.SnapshotRepository {
	return memorySnapshots{m}
}

// Items returns a contracts.ItemRepository view of the store.
func (m *Memory) Items() contracts.ItemRepository {
	return m
}

// memorySnapshots adapts the named snapshot methods onto the repository
// interface (the Item interface already claims the bare Upsert name).
type memorySnapshots struct{ m *Memory }

func (a memorySnapshots) Upsert(ctx context.Context, snap contracts.Snapshot) (contracts.Snapshot, error) {
	return a.m.UpsertSnapshot(ctx, snap)
}

func (a memorySnapshots) History(ctx context.Context, itemID int64) ([]contracts.Snapshot, error) {
	return a.m.SnapshotHistory(ctx, itemID)
}

func (a memorySnapshots) Latest(ctx context.Context, itemID int64) (*contracts.Snapshot, error) {
	return a.m.LatestSnapshot(ctx, itemID)
}

func (a memorySnapshots) AllAscending(ctx context.Context) ([]contracts.Snapshot, error) {
	return a.m.AllSnapshotsAscending(ctx)
}

func (a memorySnapshots) DeleteBySource(ctx context.Context, sources []contracts.Source) (int64, error) {
	return a.m.DeleteSnapshotsBySource(ctx, sources)
}

func (a memorySnapshots) AuditSummary(ctx context.Context) (contracts.AuditSummary, error) {
	return a.m.SnapshotAuditSummary(ctx)
}

func (a memorySnapshots) Recent(ctx context.Context, limit int) ([]contracts.Snapshot, error) {
	return a.m.RecentSnapshots(ctx, limit)
}

func (a memorySnapshots) DistinctDays(ctx context.Context) (int, error) {
	return a.m.SnapshotDistinctDays(ctx)
}
