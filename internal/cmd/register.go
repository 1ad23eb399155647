package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	registerUsername string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new storefront account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		user, err := a.auth.Register(ctx, registerUsername, registerEmail, registerPassword)
		if err != nil {
			return err
		}
		fmt.Printf("account created for %s, sign in with `storefront login`\n", user.Username)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "desired username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password")
	rootCmd.AddCommand(registerCmd)
}
