package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Headless client for the Bingsoo House storefront",
	Long: `storefront is a headless client for the Bingsoo House storefront backend.
It manages the device session (password and federated sign-in, persisted
token, role-aware routing) and the server-side cart for kiosk and POS use.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
