package risk

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func decPtr(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

func basePlan() TradePlan {
	return TradePlan{
		PlanID:          "plan-1",
		Symbol:          "BTCUSDT",
		StopLoss:        decPtr("98"),
		MaxLossPct:      d("0.02"),
		RiskBudgetPct:   d("0.01"),
		Leverage:        d("5"),
		NotionalUSD:     d("10000"),
		EntryPriceRange: []decimal.Decimal{d("100"), d("101")},
	}
}

func baseSnapshot() AccountSnapshot {
	return AccountSnapshot{
		Equity:                 d("100000"),
		PeakEquity:             d("100000"),
		DailyLossPct:           decimal.Zero,
		NetExposurePct:         d("0.1"),
		LiquidationBufferRatio: d("0.2"),
		GovernorState:          ModeNormal,
	}
}

func TestCheck_ApprovesHealthyPlan(t *testing.T) {
	out := Check(basePlan(), baseSnapshot(), DefaultThresholds())
	if !out.Allowed() {
		t.Fatalf("reasons=%v want none", out.Reasons)
	}
	if out.StopDistancePct.Cmp(d("0.02")) != 0 {
		t.Fatalf("stop distance=%s want=0.02", out.StopDistancePct)
	}
	if out.Metrics.NotionalLimit.StringFixed(2) != "43478.26" {
		t.Fatalf("notional_limit=%s want=43478.26", out.Metrics.NotionalLimit.StringFixed(2))
	}
	if !out.Metrics.Drawdown.IsZero() {
		t.Fatalf("drawdown=%s want=0", out.Metrics.Drawdown)
	}
	if out.Metrics.RiskBudgetPct.Cmp(d("0.01")) != 0 || out.Metrics.Equity.Cmp(d("100000")) != 0 {
		t.Fatalf("metrics=%+v", out.Metrics)
	}
}

func TestCheck_SingleReasons(t *testing.T) {
	cases := []struct {
		name string
		plan func(*TradePlan)
		snap func(*AccountSnapshot)
		want []Reason
	}{
		{
			name: "no stop loss",
			plan: func(p *TradePlan) { p.StopLoss = nil },
			want: []Reason{ReasonMissingStopLoss, ReasonMissingStopDistancePct},
		},
		{
			name: "zero stop loss",
			plan: func(p *TradePlan) { p.StopLoss = decPtr("0") },
			want: []Reason{ReasonMissingStopLoss, ReasonMissingStopDistancePct},
		},
		{
			name: "max loss pct above limit",
			plan: func(p *TradePlan) { p.MaxLossPct = d("0.11") },
			want: []Reason{ReasonMaxLossPctExceeds},
		},
		{
			name: "max loss pct at limit",
			plan: func(p *TradePlan) { p.MaxLossPct = d("0.10") },
			want: nil,
		},
		{
			name: "leverage above limit",
			plan: func(p *TradePlan) { p.Leverage = d("101") },
			want: []Reason{ReasonMaxLeverageExceeds},
		},
		{
			name: "leverage at limit",
			plan: func(p *TradePlan) { p.Leverage = d("100") },
			want: nil,
		},
		{
			name: "open positions at limit",
			snap: func(s *AccountSnapshot) { s.OpenPositions = 3 },
			want: []Reason{ReasonMaxOpenPositions},
		},
		{
			name: "open positions below limit",
			snap: func(s *AccountSnapshot) { s.OpenPositions = 2 },
			want: nil,
		},
		{
			name: "positions per symbol at limit",
			snap: func(s *AccountSnapshot) { s.PositionsPerSymbol = 1 },
			want: []Reason{ReasonMaxPositionsPerSymbol},
		},
		{
			name: "net exposure at limit",
			snap: func(s *AccountSnapshot) { s.NetExposurePct = d("0.6") },
			want: nil,
		},
		{
			name: "net exposure above limit",
			snap: func(s *AccountSnapshot) { s.NetExposurePct = d("0.61") },
			want: []Reason{ReasonMaxNetExposurePct},
		},
		{
			name: "daily loss at limit",
			snap: func(s *AccountSnapshot) { s.DailyLossPct = d("0.1") },
			want: []Reason{ReasonMaxDailyLoss},
		},
		{
			name: "consecutive losses at limit",
			snap: func(s *AccountSnapshot) { s.ConsecutiveLosses = 5 },
			want: []Reason{ReasonMaxConsecutiveLosses},
		},
		{
			name: "drawdown at limit",
			snap: func(s *AccountSnapshot) {
				s.PeakEquity = d("200000")
				s.Equity = d("120000")
			},
			want: []Reason{ReasonMaxDrawdown},
		},
		{
			name: "no peak equity skips drawdown",
			snap: func(s *AccountSnapshot) { s.PeakEquity = decimal.Zero },
			want: nil,
		},
		{
			name: "equity above peak",
			snap: func(s *AccountSnapshot) { s.Equity = d("110000") },
			want: nil,
		},
		{
			name: "lockdown",
			snap: func(s *AccountSnapshot) { s.GovernorState = ModeLockdown },
			want: []Reason{ReasonLockdown},
		},
		{
			name: "reference from second bound",
			plan: func(p *TradePlan) { p.EntryPriceRange = []decimal.Decimal{decimal.Zero, d("100")} },
			want: nil,
		},
		{
			name: "no entry range",
			plan: func(p *TradePlan) { p.EntryPriceRange = nil },
			want: []Reason{ReasonMissingStopDistancePct},
		},
		{
			name: "stop at entry",
			plan: func(p *TradePlan) { p.StopLoss = decPtr("100") },
			want: []Reason{ReasonMissingStopDistancePct},
		},
		{
			name: "notional above ceiling",
			plan: func(p *TradePlan) { p.NotionalUSD = d("50000") },
			want: []Reason{ReasonNotionalExceedsRiskBudget},
		},
		{
			name: "risk budget above max loss",
			plan: func(p *TradePlan) { p.RiskBudgetPct = d("0.11") },
			want: []Reason{ReasonSingleTradeLossExceeds},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := basePlan()
			snap := baseSnapshot()
			if tc.plan != nil {
				tc.plan(&plan)
			}
			if tc.snap != nil {
				tc.snap(&snap)
			}
			out := Check(plan, snap, DefaultThresholds())
			got := out.Reasons
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("reasons=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestCheck_LockdownWithoutStopLoss(t *testing.T) {
	plan := basePlan()
	plan.StopLoss = nil
	snap := baseSnapshot()
	snap.GovernorState = ModeLockdown

	out := Check(plan, snap, DefaultThresholds())
	if out.Allowed() {
		t.Fatalf("expected rejection")
	}
	want := []Reason{ReasonMissingStopLoss, ReasonLockdown, ReasonMissingStopDistancePct}
	if !reflect.DeepEqual(out.Reasons, want) {
		t.Fatalf("reasons=%v want=%v", out.Reasons, want)
	}
}

func TestCheck_AllReasonsInOrder(t *testing.T) {
	plan := TradePlan{
		PlanID:          "bad",
		MaxLossPct:      d("0.2"),
		RiskBudgetPct:   d("0.2"),
		Leverage:        d("200"),
		NotionalUSD:     d("10000000"),
		EntryPriceRange: []decimal.Decimal{d("100")},
	}
	snap := AccountSnapshot{
		Equity:             d("50000"),
		PeakEquity:         d("100000"),
		DailyLossPct:       d("0.2"),
		ConsecutiveLosses:  6,
		OpenPositions:      5,
		PositionsPerSymbol: 2,
		NetExposurePct:     d("0.9"),
		GovernorState:      ModeLockdown,
	}
	out := Check(plan, snap, DefaultThresholds())
	if !reflect.DeepEqual(out.Reasons, AllReasons) {
		t.Fatalf("reasons=%v want=%v", out.Reasons, AllReasons)
	}
	if out.Metrics.Drawdown.Cmp(d("0.5")) != 0 {
		t.Fatalf("drawdown=%s want=0.5", out.Metrics.Drawdown)
	}
}

func TestCheck_DoesNotMutateInputs(t *testing.T) {
	plan := basePlan()
	snap := baseSnapshot()
	before := *plan.StopLoss
	_ = Check(plan, snap, DefaultThresholds())
	if !plan.StopLoss.Equal(before) || len(plan.EntryPriceRange) != 2 {
		t.Fatalf("plan mutated: %+v", plan)
	}
	if !snap.Equity.Equal(d("100000")) {
		t.Fatalf("snapshot mutated: %+v", snap)
	}
}

func TestCheck_SameInputsSameOutcome(t *testing.T) {
	plan := basePlan()
	plan.Leverage = d("30")
	plan.NotionalUSD = d("90000")
	snap := baseSnapshot()
	snap.OpenPositions = 4
	snap.PeakEquity = d("150000")

	first := Check(plan, snap, DefaultThresholds())
	second := Check(plan, snap, DefaultThresholds())
	if len(first.Reasons) == 0 {
		t.Fatalf("expected a rejection")
	}
	if !reflect.DeepEqual(first.Reasons, second.Reasons) {
		t.Fatalf("reasons=%v then %v", first.Reasons, second.Reasons)
	}
	pairs := []struct {
		name string
		a, b decimal.Decimal
	}{
		{"equity", first.Metrics.Equity, second.Metrics.Equity},
		{"drawdown", first.Metrics.Drawdown, second.Metrics.Drawdown},
		{"notional_limit", first.Metrics.NotionalLimit, second.Metrics.NotionalLimit},
		{"risk_budget_pct", first.Metrics.RiskBudgetPct, second.Metrics.RiskBudgetPct},
		{"stop_distance_pct", first.StopDistancePct, second.StopDistancePct},
	}
	for _, p := range pairs {
		if !p.a.Equal(p.b) {
			t.Fatalf("%s=%s then %s", p.name, p.a, p.b)
		}
	}
}
