package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-5s  %-19s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("\u2500", 96))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}

		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		e, err := d.store.EventRepo().GetLLMEvent(cmd.Context(), seq)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", seq)
		}

		out := cmd.OutOrStdout()
		sep := strings.Repeat("\u2500", 60)

		fmt.Fprintf(out, "Seq:       %d\n", e.Sequence)
		fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
		fmt.Fprintf(out, "Model:     %s\n", e.Model)
		fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(out, "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
		}

		for _, part := range []struct{ name, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Fprintln(out)
			fmt.Fprintln(out, sep)
			fmt.Fprintln(out, part.name)
			fmt.Fprintln(out, sep)
			if part.body != "" {
				fmt.Fprintln(out, part.body)
			} else {
				fmt.Fprintln(out, "(not captured)")
			}
		}

		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		usage, err := d.store.EventRepo().LLMUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		type agg struct {
			key             string
			calls, failures int
			input, output   int64
			latencySum      float64
			cost            float64
			priced          bool
		}
		var byPurpose, byModel []*agg
		find := func(list *[]*agg, key string) *agg {
			for _, a := range *list {
				if a.key == key {
					return a
				}
			}
			a := &agg{key: key, priced: true}
			*list = append(*list, a)
			return a
		}
		for _, u := range usage {
			for _, a := range []*agg{find(&byPurpose, u.Purpose), find(&byModel, u.Model)} {
				a.calls += u.Requests
				a.failures += u.Failures
				a.input += u.InputTokens
				a.output += u.OutputTokens
				a.latencySum += u.AvgLatencyMs * float64(u.Requests)
			}
			m := find(&byModel, u.Model)
			if c, ok := llm.UsageCost(u); ok {
				m.cost += c
			} else {
				m.priced = false
			}
		}

		// Usage by purpose.
		fmt.Fprintln(out, "Usage by Purpose")
		fmt.Fprintln(out, strings.Repeat("\u2500", 80))
		fmt.Fprintf(out, "%-16s  %6s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("\u2500", 80))

		var totalCalls int
		var totalIn, totalOut int64
		for _, a := range byPurpose {
			fmt.Fprintf(out, "%-16s  %6d  %6d  %10d  %10d  %10d  %8.0f\n",
				a.key, a.calls, a.failures, a.input, a.output, a.input+a.output, a.latencySum/float64(a.calls))
			totalCalls += a.calls
			totalIn += a.input
			totalOut += a.output
		}

		fmt.Fprintln(out, strings.Repeat("\u2500", 80))
		fmt.Fprintf(out, "%-16s  %6d  %6s  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, "", totalIn, totalOut, totalIn+totalOut)

		// Cost by model.
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Estimated Cost (USD)")
		fmt.Fprintln(out, strings.Repeat("\u2500", 72))
		fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n",
			"Model", "Calls", "Input", "Output", "Cost")
		fmt.Fprintln(out, strings.Repeat("\u2500", 72))

		var totalCost float64
		var unknownModels []string
		for _, a := range byModel {
			if !a.priced {
				unknownModels = append(unknownModels, a.key)
				fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
					truncate(a.key, 32), a.calls, a.input, a.output, "?")
				continue
			}
			totalCost += a.cost
			fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(a.key, 32), a.calls, a.input, a.output, formatCost(a.cost))
		}

		fmt.Fprintln(out, strings.Repeat("\u2500", 72))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n",
			label, "", "", "", formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}

		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (rc-reformat, rc-questions)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
