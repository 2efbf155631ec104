package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/QuickFlo/condkit/condition"
	"github.com/spf13/cobra"
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List the operator catalogue in display order",
	RunE:  runOperators,
}

func init() {
	rootCmd.AddCommand(operatorsCmd)
}

func runOperators(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATOR\tLABEL\tJSONLOGIC\tRIGHT")

	for _, info := range condition.ListOperators() {
		right := "required"
		if !info.RightRequired {
			right = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Value, info.Label, info.JSONLogicOp, right)
	}
	return w.Flush()
}
