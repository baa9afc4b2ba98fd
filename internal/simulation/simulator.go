// Package simulation replays the ranking strategy over stored history and
// reports the equity curve a follower would have seen. The replay only ever
// looks at snapshots dated on or before the day being evaluated, so the
// result contains no hindsight.
package simulation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/internal/scoring"
	"github.com/skinfolio/skinfolio/internal/strategyconfig"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

// Simulator replays the strategy against the snapshot store.
type Simulator struct {
	items  contracts.ItemRepository
	snaps  contracts.SnapshotRepository
	engine *scoring.Engine
	cfg    *strategyconfig.Config
	logger *logger.Logger
}

// New creates a simulator sharing the scoring engine's tuning.
func New(items contracts.ItemRepository, snaps contracts.SnapshotRepository, engine *scoring.Engine, cfg *strategyconfig.Config, log *logger.Logger) *Simulator {
	return &Simulator{
		items:  items,
		snaps:  snaps,
		engine: engine,
		cfg:    cfg,
		logger: log,
	}
}

// Run replays an equal-weight top-N portfolio from the first stored day to
// the last. initialCapital <= 0 and topN <= 0 fall back to configured
// defaults. Fewer than two distinct days yields an empty curve with the
// capital untouched.
func (s *Simulator) Run(ctx context.Context, initialCapital float64, topN int) (contracts.SimResult, error) {
	if initialCapital <= 0 {
		initialCapital = s.cfg.Simulation.DefaultCapital
	}
	if topN <= 0 {
		topN = s.cfg.Simulation.DefaultTopN
	}

	result := contracts.SimResult{
		InitialCapital: initialCapital,
		EndingCapital:  initialCapital,
		Points:         []contracts.SimPoint{},
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list items: %w", err)
	}
	histories, days, err := s.loadHistories(ctx, items)
	if err != nil {
		return result, err
	}
	if len(days) < 2 {
		return result, nil
	}

	candidates := make([]scoring.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, scoring.Candidate{Item: item, History: histories[item.ID]})
	}

	var (
		cash      = initialCapital
		holdings  = map[int64]float64{} // item id -> shares
		lastPrice = map[int64]float64{}
		current   []int64 // sorted member ids of the active portfolio
		peak      = initialCapital
		prevEq    = initialCapital
	)

	for _, day := range days {
		for _, item := range items {
			if price, ok := priceOn(histories[item.ID], day); ok {
				lastPrice[item.ID] = price
			}
		}

		target := s.membership(candidates, day, topN)
		if target != nil && !sameMembers(current, target) {
			// Liquidate at last-known prices, then split the proceeds
			// equally across the new basket.
			for id, shares := range holdings {
				cash += shares * lastPrice[id]
				delete(holdings, id)
			}

			buyable := make([]int64, 0, len(target))
			for _, id := range target {
				if lastPrice[id] > 0 {
					buyable = append(buyable, id)
				}
			}
			if len(buyable) > 0 {
				per := cash / float64(len(buyable))
				for _, id := range buyable {
					holdings[id] = per / lastPrice[id]
				}
				cash = 0
			}
			current = target
			result.DaysTraded++
		}

		equity := cash
		for id, shares := range holdings {
			equity += shares * lastPrice[id]
		}

		dayReturn := 0.0
		if prevEq > 0 {
			dayReturn = (equity - prevEq) / prevEq * 100
		}
		if dayReturn > 0 {
			result.WinDays++
		} else if dayReturn < 0 {
			result.LossDays++
		}

		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (equity - peak) / peak * 100; dd < result.MaxDrawdownPct {
				result.MaxDrawdownPct = dd
			}
		}

		result.Points = append(result.Points, contracts.SimPoint{
			Date:         day,
			Equity:       equity,
			DayReturnPct: dayReturn,
			Holdings:     holdingsList(holdings),
		})
		prevEq = equity
	}

	result.EndingCapital = prevEq
	result.TotalReturnPct = (prevEq - initialCapital) / initialCapital * 100

	s.logger.WithFields(map[string]interface{}{
		"days":       len(days),
		"rebalances": result.DaysTraded,
		"ending":     result.EndingCapital,
	}).Debug("simulation complete")
	return result, nil
}

// loadHistories returns per-item ascending histories plus the sorted distinct
// days across the whole store.
func (s *Simulator) loadHistories(ctx context.Context, items []contracts.Item) (map[int64][]contracts.Snapshot, []time.Time, error) {
	all, err := s.snaps.AllAscending(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshots: %w", err)
	}

	tracked := make(map[int64]bool, len(items))
	for _, item := range items {
		tracked[item.ID] = true
	}

	histories := make(map[int64][]contracts.Snapshot, len(items))
	daySet := make(map[int64]time.Time)
	for _, snap := range all {
		if !tracked[snap.ItemID] {
			continue
		}
		histories[snap.ItemID] = append(histories[snap.ItemID], snap)
		day := contracts.Day(snap.Date)
		daySet[day.Unix()] = day
	}

	days := make([]time.Time, 0, len(daySet))
	for _, day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return histories, days, nil
}

// membership ranks with data up to day and returns the sorted top-N item
// ids, or nil when nothing is rankable yet.
func (s *Simulator) membership(candidates []scoring.Candidate, day time.Time, topN int) []int64 {
	records := s.engine.Rank(candidates, day)
	if len(records) == 0 {
		return nil
	}
	if len(records) > topN {
		records = records[:topN]
	}

	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ItemID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// priceOn finds the item's snapshot for exactly this day.
func priceOn(history []contracts.Snapshot, day time.Time) (float64, bool) {
	idx := sort.Search(len(history), func(i int) bool {
		return !history[i].Date.Before(day)
	})
	if idx < len(history) && history[idx].Date.Equal(day) {
		return history[idx].PriceUSD, true
	}
	return 0, false
}

func sameMembers(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func holdingsList(holdings map[int64]float64) []contracts.Holding {
	out := make([]contracts.Holding, 0, len(holdings))
	for id, shares := range holdings {
		out = append(out, contracts.Holding{ItemID: id, Shares: shares})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
