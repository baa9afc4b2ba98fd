// Package scoring turns snapshot history into a ranked list of buy
// candidates. The engine is deterministic: the same histories and tuning
// always produce the same ordering, sub-scores, and rationale text.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/strategyconfig"
)

// Candidate pairs an item with its ascending snapshot history.
type Candidate struct {
	Item    contracts.Item
	History []contracts.Snapshot
}

// Engine computes composite scores under one strategy revision.
type Engine struct {
	cfg *strategyconfig.Config
}

// NewEngine creates an engine bound to the given tuning.
func NewEngine(cfg *strategyconfig.Config) *Engine {
	return &Engine{cfg: cfg}
}

// feature holds the raw per-item measurements before cross-sectional
// normalization.
type feature struct {
	item        contracts.Item
	latestPrice float64
	momentumPct float64
	dailyVolPct float64
	avgVolume   float64
}

// Rank scores every candidate with enough history and returns them ordered
// best first. asOf bounds the observations used; pass the zero time to use
// everything.
func (e *Engine) Rank(candidates []Candidate, asOf time.Time) []contracts.ScoreRecord {
	features := make([]feature, 0, len(candidates))
	for _, c := range candidates {
		window := e.window(c.History, asOf)
		if len(window) < e.cfg.Ranking.MinHistory {
			continue
		}

		first := window[0].PriceUSD
		last := window[len(window)-1].PriceUSD
		if first <= 0 {
			continue
		}

		features = append(features, feature{
			item:        c.Item,
			latestPrice: last,
			momentumPct: (last - first) / first * 100,
			dailyVolPct: dailyReturnStdDevPct(window),
			avgVolume:   averageVolume(window),
		})
	}
	if len(features) == 0 {
		return []contracts.ScoreRecord{}
	}

	momentumNorm := minMaxOf(features, func(f feature) float64 { return f.momentumPct })
	liquidityNorm := minMaxOf(features, func(f feature) float64 { return f.avgVolume })

	weights := e.cfg.Ranking.Weights
	records := make([]contracts.ScoreRecord, 0, len(features))
	for _, f := range features {
		sub := contracts.SubScores{
			// Blend of cross-sectional rank and raw squash: the rank term
			// pins at 1 for the universe leader, the squash term keeps
			// rising with the move itself.
			Momentum:   0.5*momentumNorm(f.momentumPct) + 0.5*squashMomentum(f.momentumPct),
			Volatility: e.volatilityScore(f.dailyVolPct),
			Liquidity:  liquidityNorm(f.avgVolume),
			Rarity:     e.cfg.Rarity.Score(f.item.Rarity),
		}
		records = append(records, contracts.ScoreRecord{
			ItemID:         f.item.ID,
			Name:           f.item.Name,
			Rarity:         f.item.Rarity,
			Category:       f.item.Category,
			ImageURL:       f.item.ImageURL,
			ListingURL:     f.item.ListingURL,
			Thesis:         f.item.Thesis,
			LatestPriceUSD: f.latestPrice,
			MomentumPct:    f.momentumPct,
			Sub:            sub,
			Composite: weights.Momentum*sub.Momentum +
				weights.Volatility*sub.Volatility +
				weights.Liquidity*sub.Liquidity +
				weights.Rarity*sub.Rarity,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Composite != records[j].Composite {
			return records[i].Composite > records[j].Composite
		}
		if records[i].Sub.Liquidity != records[j].Sub.Liquidity {
			return records[i].Sub.Liquidity > records[j].Sub.Liquidity
		}
		return records[i].ItemID < records[j].ItemID
	})

	pivot := records[min(e.cfg.Ranking.DefaultTopN, len(records))-1]
	for i := range records {
		records[i].Rank = i + 1
		records[i].TotalCandidates = len(records)
		records[i].Rationale = rationale(records[i], pivot)
	}
	return records
}

// window returns the trailing observations up to asOf, at most
// Ranking.Window of them. History arrives ascending from the store.
func (e *Engine) window(history []contracts.Snapshot, asOf time.Time) []contracts.Snapshot {
	if !asOf.IsZero() {
		cut := len(history)
		for cut > 0 && history[cut-1].Date.After(asOf) {
			cut--
		}
		history = history[:cut]
	}
	if n := e.cfg.Ranking.Window; len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}

// momentumScalePct sets how fast raw momentum approaches the squash bound.
// A window move of this size lands midway between neutral and the bound.
const momentumScalePct = 25.0

// squashMomentum maps raw momentum percent onto (0, 1), strictly increasing
// and never reaching the bound: a larger rise always scores higher.
func squashMomentum(pct float64) float64 {
	return 0.5 + 0.5*pct/(math.Abs(pct)+momentumScalePct)
}

// volatilityScore maps dispersion through a Gaussian bump centered on the
// target band. Flat prices and wild swings both score near zero; moderate
// movement peaks at 1.
func (e *Engine) volatilityScore(dailyVolPct float64) float64 {
	dev := (dailyVolPct - e.cfg.Volatility.TargetDailyPct) / e.cfg.Volatility.TolerancePct
	return math.Exp(-dev * dev)
}

// dailyReturnStdDevPct computes the standard deviation of day-over-day
// percentage returns across the window, excluding the newest return. The
// latest move is momentum's input; dispersion covers the established band,
// so a fresh rise is never penalized by the same observation that rewards
// it.
func dailyReturnStdDevPct(window []contracts.Snapshot) float64 {
	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window)-1; i++ {
		prev := window[i-1].PriceUSD
		if prev <= 0 {
			continue
		}
		returns = append(returns, (window[i].PriceUSD-prev)/prev*100)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}

func averageVolume(window []contracts.Snapshot) float64 {
	var total int64
	for _, s := range window {
		total += s.Volume24h
	}
	return float64(total) / float64(len(window))
}

// minMaxOf builds a cross-sectional 0..1 normalizer over the given raw
// measurement. A degenerate universe (all equal) maps to 0.5 so the other
// sub-scores decide.
func minMaxOf(features []feature, raw func(feature) float64) func(float64) float64 {
	lo, hi := raw(features[0]), raw(features[0])
	for _, f := range features[1:] {
		v := raw(f)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return func(float64) float64 { return 0.5 }
	}
	return func(v float64) float64 { return (v - lo) / (hi - lo) }
}
