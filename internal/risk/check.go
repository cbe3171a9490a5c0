package risk

import "github.com/shopspring/decimal"

// Outcome is the result of running the guardrail battery.
type Outcome struct {
	Reasons         []Reason
	Metrics         Metrics
	StopDistancePct decimal.Decimal
}

func (o Outcome) Allowed() bool {
	return len(o.Reasons) == 0
}

// Check runs every guardrail against plan and snapshot. It never stops at
// the first failure and has no side effects; reasons come back in check
// order.
func Check(plan TradePlan, snap AccountSnapshot, th Thresholds) Outcome {
	reasons := make([]Reason, 0, len(AllReasons))
	add := func(r Reason) {
		reasons = append(reasons, r)
	}

	if plan.StopLoss == nil || plan.StopLoss.IsZero() {
		add(ReasonMissingStopLoss)
	}
	if plan.MaxLossPct.GreaterThan(th.MaxLossPct) {
		add(ReasonMaxLossPctExceeds)
	}
	if plan.Leverage.GreaterThan(th.MaxLeverage) {
		add(ReasonMaxLeverageExceeds)
	}
	if snap.OpenPositions >= th.MaxOpenPositions {
		add(ReasonMaxOpenPositions)
	}
	if snap.PositionsPerSymbol >= th.MaxPositionsPerSymbol {
		add(ReasonMaxPositionsPerSymbol)
	}
	if snap.NetExposurePct.GreaterThan(th.MaxNetExposurePct) {
		add(ReasonMaxNetExposurePct)
	}
	if snap.DailyLossPct.GreaterThanOrEqual(th.MaxDailyLossPct) {
		add(ReasonMaxDailyLoss)
	}
	if snap.ConsecutiveLosses >= th.MaxConsecutiveLosses {
		add(ReasonMaxConsecutiveLosses)
	}

	drawdown := snap.Drawdown()
	if snap.PeakEquity.IsPositive() && drawdown.GreaterThanOrEqual(th.MaxDrawdownPct) {
		add(ReasonMaxDrawdown)
	}

	if snap.GovernorState == ModeLockdown {
		add(ReasonLockdown)
	}

	stopDistance := plan.StopDistancePct()
	if !stopDistance.IsPositive() {
		add(ReasonMissingStopDistancePct)
	}

	ceiling := th.NotionalCeiling(snap.Equity, plan.RiskBudgetPct, stopDistance)
	if plan.NotionalUSD.GreaterThan(ceiling) {
		add(ReasonNotionalExceedsRiskBudget)
	}

	if plan.RiskBudgetPct.GreaterThan(th.MaxLossPct) {
		add(ReasonSingleTradeLossExceeds)
	}

	return Outcome{
		Reasons: reasons,
		Metrics: Metrics{
			Equity:        snap.Equity,
			Drawdown:      drawdown,
			NotionalLimit: ceiling,
			RiskBudgetPct: plan.RiskBudgetPct,
		},
		StopDistancePct: stopDistance,
	}
}
