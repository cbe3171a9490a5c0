package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"guardrail/internal/risk"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a plan file against the guardrails",
	Long: `Evaluate a trade plan JSON document with an account snapshot given by flags.
The decision is recorded exactly as through the HTTP API. A rejected plan is
printed with its reasons and exits 0; malformed plans and persistence
failures exit non-zero.

Example:
  guardrail evaluate --plan plan.json --equity 100000 --peak-equity 105000 --open-positions 1`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

var (
	evalPlanPath          string
	evalEquity            string
	evalPeakEquity        string
	evalDailyLossPct      string
	evalNetExposurePct    string
	evalLiquidationBuffer string
	evalGovernorState     string
	evalConsecutiveLosses int
	evalOpenPositions     int
	evalPositionsPerSym   int
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	f := evaluateCmd.Flags()
	f.StringVarP(&evalPlanPath, "plan", "p", "", "path to the plan JSON file (required)")
	f.StringVar(&evalEquity, "equity", "0", "account equity")
	f.StringVar(&evalPeakEquity, "peak-equity", "0", "peak account equity")
	f.StringVar(&evalDailyLossPct, "daily-loss-pct", "0", "realised loss today as a fraction of equity")
	f.StringVar(&evalNetExposurePct, "net-exposure-pct", "0", "net exposure as a fraction of equity")
	f.StringVar(&evalLiquidationBuffer, "liquidation-buffer-ratio", "", "liquidation buffer ratio (default from config)")
	f.StringVar(&evalGovernorState, "governor-state", "NORMAL", "caller's view of the governor (NORMAL or LOCKDOWN)")
	f.IntVar(&evalConsecutiveLosses, "consecutive-losses", 0, "current losing streak")
	f.IntVar(&evalOpenPositions, "open-positions", 0, "open positions")
	f.IntVar(&evalPositionsPerSym, "positions-per-symbol", 0, "open positions in the plan's symbol")
	_ = evaluateCmd.MarkFlagRequired("plan")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(evalPlanPath)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}
	snap, err := snapshotFromFlags()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if evalLiquidationBuffer == "" {
		snap.LiquidationBufferRatio = decimal.NewFromFloat(a.cfg.Risk.LiquidationBufferRatio)
	}
	d, err := a.guardrail.Evaluate(ctx, raw, snap)
	if err != nil {
		return err
	}
	renderDecision(cmd.OutOrStdout(), d)
	return nil
}

func snapshotFromFlags() (risk.AccountSnapshot, error) {
	snap := risk.AccountSnapshot{
		ConsecutiveLosses:  evalConsecutiveLosses,
		OpenPositions:      evalOpenPositions,
		PositionsPerSymbol: evalPositionsPerSym,
	}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"equity", evalEquity, &snap.Equity},
		{"peak-equity", evalPeakEquity, &snap.PeakEquity},
		{"daily-loss-pct", evalDailyLossPct, &snap.DailyLossPct},
		{"net-exposure-pct", evalNetExposurePct, &snap.NetExposurePct},
		{"liquidation-buffer-ratio", evalLiquidationBuffer, &snap.LiquidationBufferRatio},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return risk.AccountSnapshot{}, fmt.Errorf("--%s: %w", f.name, err)
		}
		*f.dst = v
	}
	mode, err := risk.ParseMode(evalGovernorState)
	if err != nil {
		return risk.AccountSnapshot{}, fmt.Errorf("--governor-state: %w", err)
	}
	snap.GovernorState = mode
	if err := snap.Validate(); err != nil {
		return risk.AccountSnapshot{}, err
	}
	return snap, nil
}
