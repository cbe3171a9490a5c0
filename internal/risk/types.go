package risk

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mode is the governor state seen by the evaluator.
type Mode string

const (
	ModeNormal   Mode = "NORMAL"
	ModeLockdown Mode = "LOCKDOWN"
)

// ParseMode accepts NORMAL or LOCKDOWN in any case. Empty reads as NORMAL.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ModeNormal:
		return ModeNormal, nil
	case ModeLockdown:
		return ModeLockdown, nil
	}
	return "", &InvalidSnapshotError{Field: "governor_state", Problem: "must be NORMAL or LOCKDOWN, got " + strconv.Quote(s)}
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return &InvalidSnapshotError{Field: "governor_state", Problem: "must be a string"}
	}
	if raw == nil {
		*m = ModeNormal
		return nil
	}
	v, err := ParseMode(*raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Reason is a rejection code. The set is closed; checks append them in a
// fixed order.
type Reason string

const (
	ReasonMissingStopLoss           Reason = "missing_stop_loss"
	ReasonMaxLossPctExceeds         Reason = "max_loss_pct_exceeds"
	ReasonMaxLeverageExceeds        Reason = "max_leverage_exceeds"
	ReasonMaxOpenPositions          Reason = "max_open_positions"
	ReasonMaxPositionsPerSymbol     Reason = "max_positions_per_symbol"
	ReasonMaxNetExposurePct         Reason = "max_net_exposure_pct"
	ReasonMaxDailyLoss              Reason = "max_daily_loss"
	ReasonMaxConsecutiveLosses      Reason = "max_consecutive_losses"
	ReasonMaxDrawdown               Reason = "max_drawdown"
	ReasonLockdown                  Reason = "lockdown"
	ReasonMissingStopDistancePct    Reason = "missing_stop_distance_pct"
	ReasonNotionalExceedsRiskBudget Reason = "notional_exceeds_risk_budget"
	ReasonSingleTradeLossExceeds    Reason = "single_trade_loss_exceeds"
)

// AllReasons lists every reason code in check order.
var AllReasons = []Reason{
	ReasonMissingStopLoss,
	ReasonMaxLossPctExceeds,
	ReasonMaxLeverageExceeds,
	ReasonMaxOpenPositions,
	ReasonMaxPositionsPerSymbol,
	ReasonMaxNetExposurePct,
	ReasonMaxDailyLoss,
	ReasonMaxConsecutiveLosses,
	ReasonMaxDrawdown,
	ReasonLockdown,
	ReasonMissingStopDistancePct,
	ReasonNotionalExceedsRiskBudget,
	ReasonSingleTradeLossExceeds,
}

// TradePlan is the subset of a proposed trade the guardrails read.
type TradePlan struct {
	PlanID     string `json:"plan_id"`
	Symbol     string `json:"symbol,omitempty"`
	MarketType string `json:"market_type,omitempty"`

	StopLoss      *decimal.Decimal `json:"stop_loss"`
	MaxLossPct    decimal.Decimal  `json:"max_loss_pct"`
	RiskBudgetPct decimal.Decimal  `json:"risk_budget_pct"`

	Leverage    decimal.Decimal `json:"leverage"`
	NotionalUSD decimal.Decimal `json:"notional_usd"`

	EntryPriceRange []decimal.Decimal `json:"entry_price_range,omitempty"`
}

// ReferencePrice is the first non-zero bound of the entry range, or zero.
func (p TradePlan) ReferencePrice() decimal.Decimal {
	for _, v := range p.EntryPriceRange {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}

// StopDistancePct is |ref - stop| / ref, or zero when either side is missing.
func (p TradePlan) StopDistancePct() decimal.Decimal {
	ref := p.ReferencePrice()
	if !ref.IsPositive() || p.StopLoss == nil || p.StopLoss.IsZero() {
		return decimal.Zero
	}
	return ref.Sub(*p.StopLoss).Abs().Div(ref)
}

// AccountSnapshot is the account state at evaluation time. It is supplied
// by the caller and never modified by the evaluator.
type AccountSnapshot struct {
	Equity                 decimal.Decimal `json:"equity"`
	PeakEquity             decimal.Decimal `json:"peak_equity"`
	DailyLossPct           decimal.Decimal `json:"daily_loss_pct"`
	ConsecutiveLosses      int             `json:"consecutive_losses"`
	OpenPositions          int             `json:"open_positions"`
	PositionsPerSymbol     int             `json:"positions_per_symbol"`
	NetExposurePct         decimal.Decimal `json:"net_exposure_pct"`
	LiquidationBufferRatio decimal.Decimal `json:"liquidation_buffer_ratio"`
	GovernorState          Mode            `json:"governor_state"`
}

// Validate rejects negative counts and equity and an unknown governor
// state. GovernorState is rewritten to its canonical form.
func (s *AccountSnapshot) Validate() error {
	mode, err := ParseMode(string(s.GovernorState))
	if err != nil {
		return err
	}
	s.GovernorState = mode
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"equity", s.Equity},
		{"peak_equity", s.PeakEquity},
	} {
		if f.v.IsNegative() {
			return &InvalidSnapshotError{Field: f.name, Problem: "must not be negative"}
		}
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"open_positions", s.OpenPositions},
		{"positions_per_symbol", s.PositionsPerSymbol},
		{"consecutive_losses", s.ConsecutiveLosses},
	} {
		if f.v < 0 {
			return &InvalidSnapshotError{Field: f.name, Problem: "must not be negative"}
		}
	}
	return nil
}

// Drawdown is (peak - equity) / peak when peak is positive, otherwise zero.
// It is negative when equity sits above the recorded peak.
func (s AccountSnapshot) Drawdown() decimal.Decimal {
	if !s.PeakEquity.IsPositive() {
		return decimal.Zero
	}
	return s.PeakEquity.Sub(s.Equity).Div(s.PeakEquity)
}

type Metrics struct {
	Equity        decimal.Decimal `json:"equity"`
	Drawdown      decimal.Decimal `json:"drawdown"`
	NotionalLimit decimal.Decimal `json:"notional_limit"`
	RiskBudgetPct decimal.Decimal `json:"risk_budget_pct"`
}

// Decision is the outcome of one evaluation. Allowed is true exactly when
// Reasons is empty.
type Decision struct {
	DecisionID string    `json:"decision_id"`
	PlanID     string    `json:"plan_id"`
	Timestamp  time.Time `json:"ts"`
	Allowed    bool      `json:"allowed"`
	Status     Status    `json:"status"`
	Reasons    []Reason  `json:"reasons"`
	Metrics    Metrics   `json:"metrics"`
}

func (d Decision) ReasonStrings() []string {
	out := make([]string, 0, len(d.Reasons))
	for _, r := range d.Reasons {
		out = append(out, string(r))
	}
	return out
}
