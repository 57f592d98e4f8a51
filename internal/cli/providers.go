package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"apiprobe/internal/providers"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the registered providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range providers.List() {
				p, _ := providers.Get(name)
				mode := "login+verify"
				if !p.SupportsLogin() {
					mode = "verify-only"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, mode, p.Description())
			}
			return w.Flush()
		},
	}
}
