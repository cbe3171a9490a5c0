package risk

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// PlanIDMaxLen matches the width of the plan_id column.
const PlanIDMaxLen = 128

// ParsePlan extracts the guardrail fields from a raw plan document. The rest
// of the document is ignored. Numbers are read from their JSON text so no
// precision is lost to float64.
func ParsePlan(raw []byte) (TradePlan, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return TradePlan{}, &MalformedPlanError{Problem: "empty document"}
	}
	if !gjson.ValidBytes(raw) {
		return TradePlan{}, &MalformedPlanError{Problem: "invalid json"}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return TradePlan{}, &MalformedPlanError{Problem: "document must be an object"}
	}
	for _, section := range []string{"meta", "risk", "sizing"} {
		r := doc.Get(section)
		if !r.Exists() || r.Type == gjson.Null {
			return TradePlan{}, &MalformedPlanError{Field: section, Problem: "missing"}
		}
		if !r.IsObject() {
			return TradePlan{}, &MalformedPlanError{Field: section, Problem: "must be an object"}
		}
	}

	var (
		plan TradePlan
		err  error
	)
	if plan.PlanID, err = requiredString(doc, "meta.plan_id"); err != nil {
		return TradePlan{}, err
	}
	if len(plan.PlanID) > PlanIDMaxLen {
		return TradePlan{}, &MalformedPlanError{Field: "meta.plan_id", Problem: "longer than 128 bytes"}
	}
	if plan.Symbol, err = optionalString(doc, "meta.symbol"); err != nil {
		return TradePlan{}, err
	}
	if plan.MarketType, err = optionalString(doc, "meta.market_type"); err != nil {
		return TradePlan{}, err
	}
	if plan.StopLoss, err = optionalNumber(doc, "risk.stop_loss"); err != nil {
		return TradePlan{}, err
	}
	if plan.MaxLossPct, err = requiredNumber(doc, "risk.max_loss_pct"); err != nil {
		return TradePlan{}, err
	}
	if plan.RiskBudgetPct, err = requiredNumber(doc, "risk.risk_budget_pct"); err != nil {
		return TradePlan{}, err
	}
	if plan.Leverage, err = requiredNumber(doc, "sizing.leverage"); err != nil {
		return TradePlan{}, err
	}
	if plan.NotionalUSD, err = requiredNumber(doc, "sizing.notional_usd"); err != nil {
		return TradePlan{}, err
	}
	if plan.EntryPriceRange, err = priceRange(doc); err != nil {
		return TradePlan{}, err
	}
	return plan, nil
}

func requiredString(doc gjson.Result, path string) (string, error) {
	r := doc.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return "", &MalformedPlanError{Field: path, Problem: "missing"}
	}
	if r.Type != gjson.String {
		return "", &MalformedPlanError{Field: path, Problem: "must be a string"}
	}
	val := strings.TrimSpace(r.Str)
	if val == "" {
		return "", &MalformedPlanError{Field: path, Problem: "empty"}
	}
	return val, nil
}

func optionalString(doc gjson.Result, path string) (string, error) {
	r := doc.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return "", nil
	}
	if r.Type != gjson.String {
		return "", &MalformedPlanError{Field: path, Problem: "must be a string"}
	}
	return strings.TrimSpace(r.Str), nil
}

func requiredNumber(doc gjson.Result, path string) (decimal.Decimal, error) {
	r := doc.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return decimal.Zero, &MalformedPlanError{Field: path, Problem: "missing"}
	}
	return numberValue(path, r)
}

func optionalNumber(doc gjson.Result, path string) (*decimal.Decimal, error) {
	r := doc.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	d, err := numberValue(path, r)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func numberValue(path string, r gjson.Result) (decimal.Decimal, error) {
	if r.Type != gjson.Number {
		return decimal.Zero, &MalformedPlanError{Field: path, Problem: "must be a number"}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(r.Raw))
	if err != nil {
		return decimal.Zero, &MalformedPlanError{Field: path, Problem: "unparseable number"}
	}
	return d, nil
}

// priceRange reads entry.price_range. A missing entry section or range is
// allowed; null bounds read as zero.
func priceRange(doc gjson.Result) ([]decimal.Decimal, error) {
	entry := doc.Get("entry")
	if !entry.Exists() || entry.Type == gjson.Null {
		return nil, nil
	}
	if !entry.IsObject() {
		return nil, &MalformedPlanError{Field: "entry", Problem: "must be an object"}
	}
	r := entry.Get("price_range")
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, &MalformedPlanError{Field: "entry.price_range", Problem: "must be an array"}
	}
	items := r.Array()
	out := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		if item.Type == gjson.Null {
			out = append(out, decimal.Zero)
			continue
		}
		d, err := numberValue("entry.price_range", item)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
