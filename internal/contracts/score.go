package contracts

// SubScores holds the four normalized (0..1) components of a composite
// score.
type SubScores struct {
	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
	Liquidity  float64 `json:"liquidity"`
	Rarity     float64 `json:"rarity"`
}

// ScoreRecord is one ranked buy candidate. Derived on demand from snapshot
// history; never persisted.
type ScoreRecord struct {
	ItemID          int64     `json:"item_id"`
	Name            string    `json:"name"`
	Rarity          string    `json:"rarity"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image_url,omitempty"`
	ListingURL      string    `json:"listing_url,omitempty"`
	Thesis          string    `json:"thesis,omitempty"`
	LatestPriceUSD  float64   `json:"latest_price_usd"`
	MomentumPct     float64   `json:"momentum_pct"`
	Sub             SubScores `json:"sub_scores"`
	Composite       float64   `json:"score"`
	Rank            int       `json:"rank"`
	TotalCandidates int       `json:"total_candidates"`
	Rationale       string    `json:"rationale"`
}
