package contracts

import "time"

// Holding is one position inside a simulated portfolio.
type Holding struct {
	ItemID int64   `json:"item_id"`
	Shares float64 `json:"shares"`
}

// SimPoint is one day of the simulated equity curve.
type SimPoint struct {
	Date         time.Time `json:"date"`
	Equity       float64   `json:"equity"`
	DayReturnPct float64   `json:"day_return_pct"`
	Holdings     []Holding `json:"holdings"`
}

// SimResult summarizes a portfolio replay. MaxDrawdownPct is reported as a
// non-positive percentage: 0 means the curve never declined.
type SimResult struct {
	InitialCapital float64    `json:"initial_capital"`
	EndingCapital  float64    `json:"ending_capital"`
	TotalReturnPct float64    `json:"total_return_pct"`
	DaysTraded     int        `json:"days_traded"`
	WinDays        int        `json:"win_days"`
	LossDays       int        `json:"loss_days"`
	MaxDrawdownPct float64    `json:"max_drawdown_pct"`
	Points         []SimPoint `json:"points"`
}
