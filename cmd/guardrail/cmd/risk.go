package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current governor state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause trading (lockdown)",
	Long: `Append a LOCKDOWN record to the governor log. Every plan evaluated while
paused is rejected with reason "lockdown".

Example:
  guardrail pause --reason "drawdown review"`,
	Args: cobra.NoArgs,
	RunE: runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume trading",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the governor log, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	pauseReason   string
	historyLimit  int
	historyOffset int
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(historyCmd)

	pauseCmd.Flags().StringVarP(&pauseReason, "reason", "r", "", "pause reason")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "records to skip")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.governor.CurrentState(ctx)
	if err != nil {
		return err
	}
	renderState(cmd.OutOrStdout(), st)
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.governor.Pause(ctx, pauseReason)
	if err != nil {
		return err
	}
	renderState(cmd.OutOrStdout(), st)
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.governor.Resume(ctx)
	if err != nil {
		return err
	}
	renderState(cmd.OutOrStdout(), st)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	items, total, err := a.governor.History(ctx, historyLimit, historyOffset)
	if err != nil {
		return err
	}
	renderHistory(cmd.OutOrStdout(), items, total)
	return nil
}
