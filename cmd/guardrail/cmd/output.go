package cmd

import (
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"guardrail/internal/governor"
	"guardrail/internal/risk"
)

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func reasonText(r *string) string {
	if r == nil {
		return "-"
	}
	return *r
}

func renderState(out io.Writer, st governor.State) {
	t := newTable(out, "GOVERNOR")
	t.AppendRows([]table.Row{
		{"Mode", st.Mode()},
		{"Paused", st.Paused},
		{"Reason", reasonText(st.Reason)},
		{"Since", st.Ts.Format(time.RFC3339)},
		{"Record", st.ID},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 10, Align: text.AlignLeft},
	})
	t.Render()
}

func renderHistory(out io.Writer, items []governor.State, total int64) {
	t := newTable(out, "GOVERNOR HISTORY")
	t.AppendHeader(table.Row{"ID", "Time", "Mode", "Reason"})
	for _, st := range items {
		t.AppendRow(table.Row{st.ID, st.Ts.Format(time.RFC3339), st.Mode(), reasonText(st.Reason)})
	}
	t.AppendFooter(table.Row{"", "", "Total", total})
	t.Render()
}

func renderDecision(out io.Writer, d risk.Decision) {
	t := newTable(out, "DECISION")
	reasons := "-"
	if len(d.Reasons) > 0 {
		reasons = strings.Join(d.ReasonStrings(), "\n")
	}
	t.AppendRows([]table.Row{
		{"Decision", d.DecisionID},
		{"Plan", d.PlanID},
		{"Status", d.Status},
		{"Reasons", reasons},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Equity", d.Metrics.Equity.StringFixed(2)},
		{"Drawdown", d.Metrics.Drawdown.StringFixed(4)},
		{"Notional limit", d.Metrics.NotionalLimit.StringFixed(2)},
		{"Risk budget", d.Metrics.RiskBudgetPct.String()},
	})
	t.Render()
}

func renderDecisions(out io.Writer, items []risk.Decision, total int64) {
	t := newTable(out, "DECISIONS")
	t.AppendHeader(table.Row{"Time", "Decision", "Plan", "Status", "Reasons"})
	for _, d := range items {
		t.AppendRow(table.Row{
			d.Timestamp.Format(time.RFC3339),
			d.DecisionID,
			d.PlanID,
			d.Status,
			strings.Join(d.ReasonStrings(), ","),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", total})
	t.Render()
}
