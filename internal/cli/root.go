// Package cli wires the command-line surface: login runs the OAuth
// authorization-code flow, verify probes a stored token, providers lists the
// catalog.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var settingsPath string

var rootCmd = &cobra.Command{
	Use:           "apiprobe",
	Short:         "Obtain and verify API credentials for third-party vendors",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "apiprobe.toml", "settings file")
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newProvidersCmd())
}

// ExecuteContext runs the root command; ctx cancellation aborts an in-flight
// flow.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
