package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"backtester/strategies"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available strategies and their parameters",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, d := range strategies.Builtins().List() {
			fmt.Fprintf(out, "%s\n    %s\n", d.ID, d.Description)
			for _, p := range d.Params {
				fmt.Fprintf(out, "    %-14s default %g  range [%g, %g]\n",
					p.Name, p.Default, p.Min, p.Max)
			}
			fmt.Fprintln(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
