// Package cmd wires up the roro-kube command line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roro-kube",
	Short: "Workstation companion for Kubernetes development",
	Long: `roro-kube keeps application repositories synced to the local workstation
and manages Kubernetes port forwards for local development.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors are printed once to stderr and map to a
// non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userFacingMessage(err))
		os.Exit(1)
	}
}

// userFacingMessage trims the persistence layer prefix so wrapped errors do
// not read "Persistence error: Git error: ..." on the terminal.
func userFacingMessage(err error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, "Persistence error: ")
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSyncCmd())
}
