package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/analytics"
	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/httpapi"
	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/layout"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		month, _ := cmd.Flags().GetString("month")
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		results := d.hist.All()
		switch {
		case date != "":
			if _, err := time.Parse(history.DateLayout, date); err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
			}
			results = history.BuildCalendarIndex(results, time.Local).On(date)
		case month != "":
			if _, err := time.Parse("2006-01", month); err != nil {
				return fmt.Errorf("invalid --month %q: want YYYY-MM", month)
			}
			var inMonth []session.StoredResult
			for _, r := range results {
				if strings.HasPrefix(history.LocalDateKey(r.Date, time.Local), month+"-") {
					inMonth = append(inMonth, r)
				}
			}
			results = inMonth
		}

		out := cmd.OutOrStdout()
		summaries := httpapi.Summarize(results)
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		if len(summaries) == 0 {
			fmt.Fprintln(out, "No attempts found.")
			return nil
		}

		fmt.Fprintf(out, "%-8s  %-16s  %-9s  %-13s  %-5s  %-3s  %s\n",
			"ID", "Date", "Score", "C / I / U", "Time", "P", "Passage")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, s := range summaries {
			fmt.Fprintf(out, "%-8s  %-16s  %-9s  %-13s  %-5s  %-3d  %s\n",
				shortID(s.ID),
				s.Date.Local().Format("2006-01-02 15:04"),
				fmt.Sprintf("%d/%d", s.Score, s.TotalPossibleScore),
				fmt.Sprintf("%d / %d / %d", s.CorrectCount, s.IncorrectCount, s.UnattemptedCount),
				layout.FormatClock(s.TimeTakenSec),
				s.NumberOfPassages,
				truncate(oneLine(s.PassageSummary), 40),
			)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one attempt with a per-question review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		r, err := findResult(d.hist, args[0])
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), r)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id>",
	Short: "Compare an attempt with the reference score distribution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		r, err := findResult(d.hist, args[0])
		if err != nil {
			return err
		}
		cmp, err := analytics.Compare(r.Score, r.TotalPossibleScore, d.cfg.Category)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Attempt:    %s (%s)\n", r.ID, r.Date.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Score:      %d / %d\n", r.Score, r.TotalPossibleScore)
		fmt.Fprintf(out, "Category:   %s, %s section\n", cmp.Category, cmp.Section)
		if cmp.Available {
			fmt.Fprintf(out, "Projected:  %.2f of %d\n", cmp.Projected, cmp.MaxMarks)
			fmt.Fprintf(out, "Typical:    %.2f to %.2f (mean %.2f)\n", cmp.Lower, cmp.Upper, cmp.Mean)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, cmp.Statement(newTranslator(d.cfg)))
		return nil
	},
}

// findResult resolves an id or a unique id prefix.
func findResult(h *history.Store, ref string) (session.StoredResult, error) {
	if r, ok := h.Get(ref); ok {
		return r, nil
	}
	var matches []session.StoredResult
	for _, r := range h.All() {
		if strings.HasPrefix(r.ID, ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return session.StoredResult{}, fmt.Errorf("attempt %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return session.StoredResult{}, fmt.Errorf("attempt id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func printResult(out io.Writer, r session.StoredResult) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(out, "ID:          %s\n", r.ID)
	fmt.Fprintf(out, "Date:        %s\n", r.Date.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Passages:    %d\n", r.NumberOfPassages)
	fmt.Fprintf(out, "Score:       %d / %d\n", r.Score, r.TotalPossibleScore)
	fmt.Fprintf(out, "Correct:     %d\n", r.CorrectCount)
	fmt.Fprintf(out, "Incorrect:   %d\n", r.IncorrectCount)
	fmt.Fprintf(out, "Unattempted: %d\n", r.UnattemptedCount)
	fmt.Fprintf(out, "Time taken:  %s\n", layout.FormatClock(r.TimeTakenSec))

	outcomes := r.Outcomes()
	for i, q := range r.Questions {
		var st session.QuestionState
		if i < len(r.QuestionStates) {
			st = r.QuestionStates[i]
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintf(out, "Q%d  [%s]  %s spent", i+1, outcomes[i], layout.FormatClock(st.TimeSpentOnQuestion))
		if st.IsMarkedForReview {
			fmt.Fprint(out, "  (marked)")
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, q.QuestionText)
		for j, opt := range q.Options {
			mark := " "
			switch {
			case opt == q.CorrectAnswerText:
				mark = "✓"
			case opt == st.SelectedOption:
				mark = "✗"
			}
			chosen := ""
			if opt == st.SelectedOption {
				chosen = "  <- your answer"
			}
			fmt.Fprintf(out, "  %s %s) %s%s\n", mark, optionLabel(j), opt, chosen)
		}
		fmt.Fprintf(out, "Explanation: %s\n", q.Explanation)
		fmt.Fprintf(out, "Difficulty:  %s\n", q.DifficultyAssessment)
		fmt.Fprintf(out, "Pitfalls:    %s\n", q.CommonPitfalls)
	}
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}

func shortID(id string) string {
	return truncate(id, 8)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	historyCmd.Flags().String("date", "", "Only attempts on this local date (YYYY-MM-DD)")
	historyCmd.Flags().String("month", "", "Only attempts in this month (YYYY-MM)")
	historyCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
