package contracts

import "time"

// Source tags where a snapshot came from.
type Source string

const (
	SourceSteam    Source = "steam"
	SourceMock     Source = "mock"
	SourceHTTP     Source = "http"
	SourceBackfill Source = "backfill"
)

// LiveSources are the source classes written by a sync run. Backfill rows are
// kept separate so a rebuild can wipe history without touching same-day sync
// output semantics.
func LiveSources() []Source {
	return []Source{SourceSteam, SourceMock, SourceHTTP}
}

// AllSources returns every source class the store can hold.
func AllSources() []Source {
	return []Source{SourceSteam, SourceMock, SourceHTTP, SourceBackfill}
}

// Item is one tracked skin in the universe. Rarity and thesis are fixed at
// seed time; image and listing URLs may be enriched later.
type Item struct {
	ID         int64
	Name       string
	Rarity     string
	Category   string
	ImageURL   string
	ListingURL string
	Thesis     string
}

// Snapshot is one dated price/volume observation for one item. At most one
// row exists per (item, date); re-ingestion overwrites.
type Snapshot struct {
	ItemID    int64
	Date      time.Time
	PriceUSD  float64
	Volume24h int64
	Source    Source
	SourceRef string
	Verified  bool
}

// Day truncates t to UTC day granularity, the resolution snapshots are keyed
// on.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
