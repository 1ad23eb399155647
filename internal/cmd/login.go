package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
	loginGoogle   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the storefront",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		a.session.Bootstrap(ctx)

		if loginGoogle {
			assertion, err := a.provider.SignIn(ctx)
			if err != nil {
				return err
			}
			sess, err := a.session.LoginWithAssertion(ctx, *assertion)
			if err != nil {
				return fmt.Errorf("%s", sess.LastError)
			}
			fmt.Println(describe(sess))
			return nil
		}

		if loginUsername == "" || loginPassword == "" {
			return fmt.Errorf("--username and --password are required (or use --google)")
		}
		sess, err := a.session.Login(ctx, loginUsername, loginPassword)
		if err != nil {
			if sess.LastError != "" {
				return fmt.Errorf("%s", sess.LastError)
			}
			return err
		}
		fmt.Println(describe(sess))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "storefront username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "storefront password")
	loginCmd.Flags().BoolVar(&loginGoogle, "google", false, "sign in with the federated identity provider")
	rootCmd.AddCommand(loginCmd)
}
