package risk

import (
	"github.com/shopspring/decimal"

	"guardrail/internal/config"
)

// Thresholds are the configured guardrail limits. They are built once at
// startup and passed by value.
type Thresholds struct {
	MaxLossPct            decimal.Decimal
	MaxLeverage           decimal.Decimal
	MaxOpenPositions      int
	MaxPositionsPerSymbol int
	MaxNetExposurePct     decimal.Decimal
	MaxDailyLossPct       decimal.Decimal
	MaxConsecutiveLosses  int
	MaxDrawdownPct        decimal.Decimal
	FeeBufferPct          decimal.Decimal
	SlippageBufferPct     decimal.Decimal
	VolatilityBufferMult  decimal.Decimal
}

func NewThresholds(cfg config.RiskConfig) (Thresholds, error) {
	if err := cfg.Validate(); err != nil {
		return Thresholds{}, err
	}
	return Thresholds{
		MaxLossPct:            decimal.NewFromFloat(cfg.MaxLossPct),
		MaxLeverage:           decimal.NewFromFloat(cfg.MaxLeverage),
		MaxOpenPositions:      cfg.MaxOpenPositions,
		MaxPositionsPerSymbol: cfg.MaxPositionsPerSymbol,
		MaxNetExposurePct:     decimal.NewFromFloat(cfg.MaxNetExposurePct),
		MaxDailyLossPct:       decimal.NewFromFloat(cfg.MaxDailyLossPct),
		MaxConsecutiveLosses:  cfg.MaxConsecutiveLosses,
		MaxDrawdownPct:        decimal.NewFromFloat(cfg.MaxDrawdownPct),
		FeeBufferPct:          decimal.NewFromFloat(cfg.FeeBufferPct),
		SlippageBufferPct:     decimal.NewFromFloat(cfg.SlippageBufferPct),
		VolatilityBufferMult:  decimal.NewFromFloat(cfg.VolatilityBufferMult),
	}, nil
}

// DefaultThresholds mirrors the configuration defaults.
func DefaultThresholds() Thresholds {
	th, err := NewThresholds(config.Default().Risk)
	if err != nil {
		panic(err)
	}
	return th
}

// NotionalCeiling sizes a position with these thresholds' buffers.
func (t Thresholds) NotionalCeiling(equity, riskBudgetPct, stopDistancePct decimal.Decimal) decimal.Decimal {
	return MaxNotional(equity, riskBudgetPct, stopDistancePct, t.FeeBufferPct, t.SlippageBufferPct, t.VolatilityBufferMult)
}
