package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		sess := a.session.Bootstrap(ctx)
		fmt.Println(describe(sess))
		if sess.Authenticated() && sess.User.Role == domain.RoleUser {
			fmt.Printf("cart: %d item(s)\n", a.cart.Count())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
