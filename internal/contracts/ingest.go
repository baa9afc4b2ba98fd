package contracts

import "time"

// SyncResult counts the outcome of one sync run. Per-item fetch failures are
// recorded, never raised.
type SyncResult struct {
	Date        time.Time `json:"date"`
	Created     int       `json:"created_snapshots"`
	Failed      int       `json:"failed_items"`
	FailedItems []string  `json:"failed_item_names,omitempty"`
}

// BackfillResult counts the outcome of a historical backfill.
type BackfillResult struct {
	Days        int      `json:"days"`
	Created     int      `json:"created_snapshots"`
	Failed      int      `json:"failed_items"`
	FailedItems []string `json:"failed_item_names,omitempty"`
}

// RebuildResult combines the delete + backfill + sync of a dataset rebuild.
type RebuildResult struct {
	Deleted           int64 `json:"deleted_snapshots"`
	HistoricalCreated int   `json:"historical_created"`
	LatestCreated     int   `json:"latest_created"`
}
