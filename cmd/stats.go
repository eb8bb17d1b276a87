package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/ui/layout"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics across all attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		results := d.hist.All()
		if len(results) == 0 {
			fmt.Fprintln(out, "No attempts yet.")
			return nil
		}

		var score, total, correct, incorrect, unattempted, seconds, best int
		bestPct := -1
		days := map[string]bool{}
		for _, r := range results {
			score += r.Score
			total += r.TotalPossibleScore
			correct += r.CorrectCount
			incorrect += r.IncorrectCount
			unattempted += r.UnattemptedCount
			seconds += r.TimeTakenSec
			days[history.LocalDateKey(r.Date, time.Local)] = true
			if r.TotalPossibleScore > 0 {
				if pct := r.Score * 100 / r.TotalPossibleScore; pct > bestPct {
					bestPct, best = pct, r.Score
				}
			}
		}

		attempted := correct + incorrect
		fmt.Fprintln(out, "Practice Statistics")
		fmt.Fprintln(out, strings.Repeat("─", 40))
		fmt.Fprintf(out, "%-18s %d\n", "Attempts", len(results))
		fmt.Fprintf(out, "%-18s %d\n", "Practice days", len(days))
		fmt.Fprintf(out, "%-18s %d / %d\n", "Total score", score, total)
		if bestPct >= 0 {
			fmt.Fprintf(out, "%-18s %d (%d%%)\n", "Best score", best, bestPct)
		}
		fmt.Fprintf(out, "%-18s %d / %d / %d\n", "C / I / U", correct, incorrect, unattempted)
		if attempted > 0 {
			fmt.Fprintf(out, "%-18s %.1f%%\n", "Accuracy", float64(correct)*100/float64(attempted))
		}
		fmt.Fprintf(out, "%-18s %s\n", "Time practised", formatDuration(seconds))
		fmt.Fprintf(out, "%-18s %s\n", "Average time", layout.FormatClock(seconds/len(results)))
		return nil
	},
}

func formatDuration(secs int) string {
	if secs < 3600 {
		return layout.FormatClock(secs)
	}
	return fmt.Sprintf("%dh %02dm", secs/3600, secs%3600/60)
}
