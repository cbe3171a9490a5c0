package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"guardrail/internal/recorder"
	"guardrail/internal/repository"
	"guardrail/internal/risk"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions [decision-id]",
	Short: "List recorded decisions or show one",
	Long: `List recorded decisions, newest first, or show a single decision by id.

Examples:
  guardrail decisions --plan-id plan-42
  guardrail decisions --status rejected -n 50
  guardrail decisions 01J9Z8M2Q4X6V7W8Y9Z0A1B2C3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecisions,
}

var (
	decisionsPlanID string
	decisionsStatus string
	decisionsLimit  int
)

func init() {
	rootCmd.AddCommand(decisionsCmd)
	decisionsCmd.Flags().StringVar(&decisionsPlanID, "plan-id", "", "filter by plan id")
	decisionsCmd.Flags().StringVar(&decisionsStatus, "status", "", "filter by status (approved|rejected)")
	decisionsCmd.Flags().IntVarP(&decisionsLimit, "limit", "n", 20, "number of decisions")
}

func runDecisions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 1 {
		row, err := a.repo.GetRiskDecision(ctx, args[0])
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("decision %s not found", args[0])
		}
		d, err := recorder.FromRow(*row)
		if err != nil {
			return err
		}
		renderDecision(cmd.OutOrStdout(), d)
		return nil
	}

	params := repository.ListRiskDecisionsParams{Limit: decisionsLimit}
	if v := strings.TrimSpace(decisionsPlanID); v != "" {
		params.PlanID = &v
	}
	if v := strings.TrimSpace(decisionsStatus); v != "" {
		params.Status = &v
	}
	rows, err := a.repo.ListRiskDecisions(ctx, params)
	if err != nil {
		return err
	}
	total, err := a.repo.CountRiskDecisions(ctx, params)
	if err != nil {
		return err
	}
	items := make([]risk.Decision, 0, len(rows))
	for _, row := range rows {
		d, err := recorder.FromRow(row)
		if err != nil {
			return err
		}
		items = append(items, d)
	}
	renderDecisions(cmd.OutOrStdout(), items, total)
	return nil
}
