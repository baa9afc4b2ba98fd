package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// rationale explains a record's placement relative to the cut-line item (the
// last record inside the default top N). Pure function of the two records.
func rationale(rec, pivot contracts.ScoreRecord) string {
	var parts []string

	switch {
	case rec.MomentumPct >= 1:
		parts = append(parts, fmt.Sprintf("price up %.1f%% over the trailing window", rec.MomentumPct))
	case rec.MomentumPct <= -1:
		parts = append(parts, fmt.Sprintf("price down %.1f%% over the trailing window", -rec.MomentumPct))
	default:
		parts = append(parts, "price roughly flat over the trailing window")
	}

	if rec.ItemID == pivot.ItemID {
		parts = append(parts, "sits at the cut line")
	} else if rec.Composite >= pivot.Composite {
		name, edge := strongestEdge(rec.Sub, pivot.Sub)
		parts = append(parts, fmt.Sprintf("beats the cut line (%s) mainly on %s (%+.2f)", pivot.Name, name, edge))
	} else {
		name, edge := strongestEdge(rec.Sub, pivot.Sub)
		parts = append(parts, fmt.Sprintf("trails the cut line (%s) mainly on %s (%+.2f)", pivot.Name, name, edge))
	}

	parts = append(parts, fmt.Sprintf("%s rarity adds %.2f", rec.Rarity, rec.Sub.Rarity))
	return strings.Join(parts, "; ") + "."
}

// strongestEdge names the non-rarity sub-score with the largest absolute
// difference against the pivot. Ties resolve in a fixed order so the text is
// stable.
func strongestEdge(a, b contracts.SubScores) (string, float64) {
	deltas := []struct {
		name  string
		delta float64
	}{
		{"momentum", a.Momentum - b.Momentum},
		{"liquidity", a.Liquidity - b.Liquidity},
		{"volatility fit", a.Volatility - b.Volatility},
	}

	best := deltas[0]
	for _, d := range deltas[1:] {
		if math.Abs(d.delta) > math.Abs(best.delta) {
			best = d
		}
	}
	return best.name, best.delta
}
