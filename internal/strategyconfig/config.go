// Package strategyconfig loads the scoring/simulation tuning file. Keeping
// the tunables in one hashed YAML document makes every ranking reproducible
// against a known strategy revision.
package strategyconfig

import (
	"fmt"
	"math"
)

// Config is the full strategy tuning document.
type Config struct {
	Meta       Meta             `yaml:"meta" json:"meta"`
	Ranking    Ranking          `yaml:"ranking" json:"ranking"`
	Volatility VolatilityBand   `yaml:"volatility" json:"volatility"`
	Rarity     RarityScoring    `yaml:"rarity" json:"rarity"`
	Simulation SimulationTuning `yaml:"simulation" json:"simulation"`
}

// Meta identifies the strategy revision.
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Description string `yaml:"description" json:"description"`
}

// Weights are the fixed composite weights. They must sum to 1.
type Weights struct {
	Momentum   float64 `yaml:"momentum" json:"momentum"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
	Liquidity  float64 `yaml:"liquidity" json:"liquidity"`
	Rarity     float64 `yaml:"rarity" json:"rarity"`
}

// Sum returns the weight total.
func (w Weights) Sum() float64 {
	return w.Momentum + w.Volatility + w.Liquidity + w.Rarity
}

// Ranking holds the scoring-engine tunables.
type Ranking struct {
	Weights Weights `yaml:"weights" json:"weights"`
	// Window is the trailing observation count fed into momentum,
	// volatility, and liquidity.
	Window int `yaml:"window" json:"window"`
	// MinHistory excludes items with fewer observations from the ranking.
	MinHistory int `yaml:"min_history" json:"min_history"`
	// DefaultTopN is used when the caller passes no limit.
	DefaultTopN int `yaml:"default_top_n" json:"default_top_n"`
}

// VolatilityBand parameterizes the peaked volatility score: dispersion at
// TargetDailyPct scores 1.0 and falls off toward zero and extreme variance.
type VolatilityBand struct {
	TargetDailyPct float64 `yaml:"target_daily_pct" json:"target_daily_pct"`
	TolerancePct   float64 `yaml:"tolerance_pct" json:"tolerance_pct"`
}

// RarityScoring maps rarity tiers onto fixed 0..1 scores.
type RarityScoring struct {
	Scores       map[string]float64 `yaml:"scores" json:"scores"`
	DefaultScore float64            `yaml:"default_score" json:"default_score"`
}

// Score returns the rarity score for a tier.
func (r RarityScoring) Score(tier string) float64 {
	if s, ok := r.Scores[tier]; ok {
		return s
	}
	return r.DefaultScore
}

// SimulationTuning holds portfolio-replay defaults.
type SimulationTuning struct {
	DefaultCapital float64 `yaml:"default_capital" json:"default_capital"`
	DefaultTopN    int     `yaml:"default_top_n" json:"default_top_n"`
}

// Default returns the built-in tuning used when no YAML file is supplied.
// Tests and the mock provider path run on it.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID:  "skin_market_v1",
			Description: "built-in defaults",
		},
		Ranking: Ranking{
			Weights: Weights{
				Momentum:   0.40,
				Volatility: 0.20,
				Liquidity:  0.25,
				Rarity:     0.15,
			},
			Window:      8,
			MinHistory:  2,
			DefaultTopN: 5,
		},
		Volatility: VolatilityBand{
			TargetDailyPct: 3.0,
			TolerancePct:   2.5,
		},
		Rarity: RarityScoring{
			Scores: map[string]float64{
				"Consumer":   0.10,
				"Industrial": 0.20,
				"Mil-Spec":   0.35,
				"Restricted": 0.50,
				"Classified": 0.65,
				"Covert":     0.85,
				"Contraband": 1.00,
			},
			DefaultScore: 0.50,
		},
		Simulation: SimulationTuning{
			DefaultCapital: 8000,
			DefaultTopN:    5,
		},
	}
}

// Validate checks internal consistency of the tuning document.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return fmt.Errorf("meta.strategy_id is required")
	}

	if diff := math.Abs(cfg.Ranking.Weights.Sum() - 1.0); diff > 1e-9 {
		return fmt.Errorf("ranking.weights must sum to 1.0, got %.6f", cfg.Ranking.Weights.Sum())
	}

	if cfg.Ranking.Window < 2 {
		return fmt.Errorf("ranking.window must be at least 2")
	}
	if cfg.Ranking.MinHistory < 2 {
		return fmt.Errorf("ranking.min_history must be at least 2")
	}
	if cfg.Ranking.DefaultTopN < 1 {
		return fmt.Errorf("ranking.default_top_n must be at least 1")
	}

	if cfg.Volatility.TargetDailyPct <= 0 || cfg.Volatility.TolerancePct <= 0 {
		return fmt.Errorf("volatility band parameters must be positive")
	}

	for tier, score := range cfg.Rarity.Scores {
		if score < 0 || score > 1 {
			return fmt.Errorf("rarity score for %q out of [0,1]: %f", tier, score)
		}
	}
	if cfg.Rarity.DefaultScore < 0 || cfg.Rarity.DefaultScore > 1 {
		return fmt.Errorf("rarity default score out of [0,1]")
	}

	if cfg.Simulation.DefaultCapital <= 0 {
		return fmt.Errorf("simulation.default_capital must be positive")
	}
	if cfg.Simulation.DefaultTopN < 1 {
		return fmt.Errorf("simulation.default_top_n must be at least 1")
	}

	return nil
}
