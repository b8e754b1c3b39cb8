package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-reactor/pkg/training"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tNAME\tDESCRIPTION")
			for _, sc := range training.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", sc.Group, sc.Name, sc.Description)
			}
			return w.Flush()
		},
	}
}
