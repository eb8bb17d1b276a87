package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored attempt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		n := d.hist.Len()
		if n == 0 {
			fmt.Fprintln(out, "History is already empty.")
			return nil
		}

		if !yes {
			fmt.Fprintf(out, "Delete all %d attempts? This cannot be undone. [y/N] ", n)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		if err := d.hist.Clear(cmd.Context()); err != nil {
			return err
		}
		d.logger.Info("history cleared", "attempts", n)
		fmt.Fprintf(out, "Deleted %d attempts.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
