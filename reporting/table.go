// Package reporting renders run results for humans and writes them to disk.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-feedcheck/runner"
	"github.com/ethereum-optimism/infra/op-feedcheck/types"
)

const maxReasonLength = 120

// RenderTable renders the results table. If out is not nil the table is also written to it.
func RenderTable(out io.Writer, result *runner.RunnerResult) string {
	t := table.NewWriter()
	if out != nil {
		t.SetOutputMirror(out)
	}
	t.SetTitle(fmt.Sprintf("Feed Reader Acceptance Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Tests", "Passed", "Failed", "Timed out", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Timed out", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for pair := result.Suites.Oldest(); pair != nil; pair = pair.Next() {
		suite := pair.Value
		t.AppendRow(table.Row{
			"Suite",
			suite.ID,
			formatDuration(suite.Duration),
			"-",
			suite.Stats.Passed,
			suite.Stats.Failed,
			suite.Stats.TimedOut,
			getResultString(suite.Status),
			"",
		})

		i := 0
		for tp := suite.Tests.Oldest(); tp != nil; tp = tp.Next() {
			test := tp.Value
			prefix := "├──"
			if i == suite.Tests.Len()-1 {
				prefix = "└──"
			}
			t.AppendRow(table.Row{
				"Test",
				fmt.Sprintf("%s %s", prefix, test.Metadata.Name),
				formatDuration(test.Duration),
				"1",
				boolToInt(test.Status == types.TestStatusPass),
				boolToInt(test.Status == types.TestStatusFail),
				boolToInt(test.Status == types.TestStatusTimeout),
				getResultString(test.Status),
				keyReason(test.Reason),
			})
			i++
		}
		t.AppendSeparator()
	}

	switch result.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(result.Duration),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.TimedOut,
		getResultString(result.Status),
		skippedNote(result.Stats.Skipped),
	})

	return t.Render()
}

// keyReason returns the first line of a failure reason, shortened for the table
func keyReason(reason string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(reason), "\n")
	return text.Snip(line, maxReasonLength, "...")
}

func skippedNote(skipped int) string {
	if skipped == 0 {
		return ""
	}
	return fmt.Sprintf("%d not started", skipped)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// getResultString returns a string representing the case result
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	case types.TestStatusTimeout:
		return "⏱ timeout"
	default:
		return "✗ fail"
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
