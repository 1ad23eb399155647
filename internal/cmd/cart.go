package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
)

var (
	cartItemID    string
	cartItemName  string
	cartQuantity  int
	cartUnitPrice float64
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart badge count",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		sess := a.session.Bootstrap(ctx)
		if !sess.Authenticated() {
			return fmt.Errorf("not signed in")
		}
		fmt.Printf("cart: %d item(s)\n", a.cart.Count())
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item to the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		a.session.Bootstrap(ctx)
		item := domain.CartItem{
			ID:        cartItemID,
			Name:      cartItemName,
			Quantity:  cartQuantity,
			UnitPrice: cartUnitPrice,
		}
		if err := a.cart.AddItem(ctx, item); err != nil {
			return err
		}
		fmt.Printf("cart: %d item(s)\n", a.cart.Count())
		return nil
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set-quantity",
	Short: "Change a cart line's quantity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		a.session.Bootstrap(ctx)
		if err := a.cart.UpdateQuantity(ctx, cartItemID, cartQuantity); err != nil {
			return err
		}
		fmt.Printf("cart: %d item(s)\n", a.cart.Count())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove an item from the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		a.session.Bootstrap(ctx)
		if err := a.cart.RemoveItem(ctx, cartItemID); err != nil {
			return err
		}
		fmt.Printf("cart: %d item(s)\n", a.cart.Count())
		return nil
	},
}

func init() {
	cartAddCmd.Flags().StringVar(&cartItemID, "id", "", "product id")
	cartAddCmd.Flags().StringVar(&cartItemName, "name", "", "product name")
	cartAddCmd.Flags().IntVar(&cartQuantity, "quantity", 1, "quantity")
	cartAddCmd.Flags().Float64Var(&cartUnitPrice, "price", 0, "unit price")
	_ = cartAddCmd.MarkFlagRequired("id")

	cartSetCmd.Flags().StringVar(&cartItemID, "id", "", "cart line id")
	cartSetCmd.Flags().IntVar(&cartQuantity, "quantity", 1, "new quantity")
	_ = cartSetCmd.MarkFlagRequired("id")

	cartRemoveCmd.Flags().StringVar(&cartItemID, "id", "", "cart line id")
	_ = cartRemoveCmd.MarkFlagRequired("id")

	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartRemoveCmd)
	rootCmd.AddCommand(cartCmd)
}
