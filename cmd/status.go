package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workstation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// TODO: report synced apps and active forwards once the GUI shares
			// its state over the local socket.
			fmt.Fprintln(cmd.OutOrStdout(), "Status: application is running")
			return nil
		},
	}
}
