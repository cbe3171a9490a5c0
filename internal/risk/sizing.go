package risk

import "github.com/shopspring/decimal"

// MaxNotional returns the largest notional whose loss at the stop, plus
// fee and slippage buffers scaled by the volatility multiplier, stays within
// equity * riskBudgetPct. A non-positive denominator yields zero.
func MaxNotional(equity, riskBudgetPct, stopDistancePct, feeBufferPct, slippageBufferPct, volatilityBufferMult decimal.Decimal) decimal.Decimal {
	buffer := feeBufferPct.Add(slippageBufferPct).Mul(volatilityBufferMult)
	denom := stopDistancePct.Add(buffer)
	if !denom.IsPositive() {
		return decimal.Zero
	}
	return equity.Mul(riskBudgetPct).Div(denom)
}
