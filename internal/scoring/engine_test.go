package scoring

import (
	"testing"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/strategyconfig"
)

func histFrom(itemID int64, prices []float64, volume int64) []contracts.Snapshot {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snaps := make([]contracts.Snapshot, len(prices))
	for i, p := range prices {
		snaps[i] = contracts.Snapshot{
			ItemID:    itemID,
			Date:      start.AddDate(0, 0, i),
			PriceUSD:  p,
			Volume24h: volume,
			Source:    contracts.SourceBackfill,
			Verified:  true,
		}
	}
	return snaps
}

func candidate(id int64, name, rarity string, prices []float64, volume int64) Candidate {
	return Candidate{
		Item:    contracts.Item{ID: id, Name: name, Rarity: rarity},
		History: histFrom(id, prices, volume),
	}
}

func TestRankRiserBeatsDecliner(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	records := engine.Rank([]Candidate{
		candidate(1, "riser", "Restricted", []float64{10, 12, 11, 15}, 300),
		candidate(2, "decliner", "Restricted", []float64{15, 13, 12, 10}, 300),
	}, time.Time{})

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Name != "riser" {
		t.Errorf("top = %q, want riser", records[0].Name)
	}
	if records[0].MomentumPct <= 0 {
		t.Errorf("riser MomentumPct = %v, want > 0", records[0].MomentumPct)
	}
	if records[0].Sub.Momentum <= 0.5 || records[1].Sub.Momentum >= 0.5 {
		t.Errorf("momentum sub-scores = %v / %v, want riser above neutral and decliner below",
			records[0].Sub.Momentum, records[1].Sub.Momentum)
	}
}

func TestRankMomentumMonotonicInLatestPrice(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	laggard := candidate(2, "laggard", "Covert", []float64{10, 10, 10, 10.5}, 100)
	before := engine.Rank([]Candidate{
		candidate(1, "leader", "Covert", []float64{10, 10, 10, 11}, 100),
		laggard,
	}, time.Time{})
	after := engine.Rank([]Candidate{
		candidate(1, "leader", "Covert", []float64{10, 10, 10, 30}, 100),
		laggard,
	}, time.Time{})

	if before[0].Name != "leader" || after[0].Name != "leader" {
		t.Fatalf("leader not on top: before %q, after %q", before[0].Name, after[0].Name)
	}

	// The leader already tops the universe, so its cross-sectional rank has
	// nowhere to go; the bigger rise must still lift the composite.
	if after[0].Composite <= before[0].Composite {
		t.Errorf("composite fell on a larger rise: %v -> %v",
			before[0].Composite, after[0].Composite)
	}
	if after[0].Sub.Momentum <= before[0].Sub.Momentum {
		t.Errorf("momentum sub-score fell on a larger rise: %v -> %v",
			before[0].Sub.Momentum, after[0].Sub.Momentum)
	}
}

func TestRankDeterministic(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())
	cands := []Candidate{
		candidate(1, "a", "Covert", []float64{10, 12, 11, 15}, 300),
		candidate(2, "b", "Classified", []float64{40, 41, 39, 44}, 800),
		candidate(3, "c", "Consumer", []float64{5, 5.2, 5.1, 5.4}, 90),
	}

	first := engine.Rank(cands, time.Time{})
	second := engine.Rank(cands, time.Time{})

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d differs between runs:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}

func TestRankTieBreaksOnItemID(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	// Identical histories and tier: identical composite and liquidity, so
	// the lower ID must come first.
	records := engine.Rank([]Candidate{
		candidate(7, "twin-b", "Covert", []float64{10, 11, 12}, 100),
		candidate(3, "twin-a", "Covert", []float64{10, 11, 12}, 100),
	}, time.Time{})

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ItemID != 3 || records[1].ItemID != 7 {
		t.Errorf("tie-break order = %d, %d; want 3, 7", records[0].ItemID, records[1].ItemID)
	}
}

func TestRankExcludesThinHistory(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	records := engine.Rank([]Candidate{
		candidate(1, "enough", "Covert", []float64{10, 11}, 100),
		candidate(2, "single", "Covert", []float64{10}, 100),
		{Item: contracts.Item{ID: 3, Name: "empty", Rarity: "Covert"}},
	}, time.Time{})

	if len(records) != 1 || records[0].Name != "enough" {
		t.Errorf("records = %+v, want only the item with two observations", records)
	}
	if records[0].Rank != 1 || records[0].TotalCandidates != 1 {
		t.Errorf("rank metadata wrong: %+v", records[0])
	}
}

func TestRankEmptyUniverse(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	if records := engine.Rank(nil, time.Time{}); len(records) != 0 {
		t.Errorf("Rank(nil) = %+v, want empty", records)
	}
}

func TestVolatilityScorePeaksInBand(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	flat := engine.volatilityScore(0)
	target := engine.volatilityScore(3.0)
	wild := engine.volatilityScore(20)

	if target != 1 {
		t.Errorf("score at target = %v, want 1", target)
	}
	if flat >= target {
		t.Errorf("flat score %v not below target score %v", flat, target)
	}
	if wild >= flat {
		t.Errorf("wild score %v not below flat score %v", wild, flat)
	}
}

func TestRankVolatilityBandOrdering(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())

	// Alternating +6%/0% steps disperse daily returns near the 3% target;
	// the flat series carries zero dispersion and should score lower on the
	// volatility component.
	records := engine.Rank([]Candidate{
		candidate(1, "banded", "Covert", []float64{100, 106, 106, 112.36, 112.36}, 100),
		candidate(2, "flat", "Covert", []float64{100, 100, 100, 100, 100}, 100),
	}, time.Time{})

	var banded, flat contracts.ScoreRecord
	for _, r := range records {
		if r.Name == "banded" {
			banded = r
		} else {
			flat = r
		}
	}
	if banded.Sub.Volatility <= flat.Sub.Volatility {
		t.Errorf("banded volatility %v not above flat %v", banded.Sub.Volatility, flat.Sub.Volatility)
	}
}

func TestRankRespectsAsOf(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// The spike lands on day 4; ranking as of day 3 must not see it.
	spiker := candidate(1, "spiker", "Covert", []float64{10, 10, 10, 1000}, 100)
	steady := candidate(2, "steady", "Covert", []float64{10, 11, 12, 13}, 100)

	asOf := start.AddDate(0, 0, 2)
	records := engine.Rank([]Candidate{spiker, steady}, asOf)

	if records[0].Name != "steady" {
		t.Errorf("top as of day 3 = %q, want steady", records[0].Name)
	}
	for _, r := range records {
		if r.Name == "spiker" && r.MomentumPct != 0 {
			t.Errorf("spiker momentum as of day 3 = %v, want 0", r.MomentumPct)
		}
	}
}

func TestRankRarityContribution(t *testing.T) {
	cfg := strategyconfig.Default()
	engine := NewEngine(cfg)

	records := engine.Rank([]Candidate{
		candidate(1, "contraband", "Contraband", []float64{10, 11}, 100),
		candidate(2, "consumer", "Consumer", []float64{10, 11}, 100),
	}, time.Time{})

	if records[0].Name != "contraband" {
		t.Errorf("top = %q, want the scarcer tier on otherwise equal items", records[0].Name)
	}
	want := cfg.Rarity.Scores["Contraband"] - cfg.Rarity.Scores["Consumer"]
	got := records[0].Sub.Rarity - records[1].Sub.Rarity
	if got != want {
		t.Errorf("rarity sub-score gap = %v, want %v", got, want)
	}
}

func TestRationaleDeterministicAndPresent(t *testing.T) {
	engine := NewEngine(strategyconfig.Default())
	cands := []Candidate{
		candidate(1, "a", "Covert", []float64{10, 12, 11, 15}, 300),
		candidate(2, "b", "Classified", []float64{40, 41, 39, 44}, 800),
	}

	first := engine.Rank(cands, time.Time{})
	second := engine.Rank(cands, time.Time{})

	for i := range first {
		if first[i].Rationale == "" {
			t.Errorf("record %d has empty rationale", i)
		}
		if first[i].Rationale != second[i].Rationale {
			t.Errorf("rationale differs between runs: %q vs %q",
				first[i].Rationale, second[i].Rationale)
		}
	}
}
