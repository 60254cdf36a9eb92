package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/money"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/validator"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/salesctl/internal/output"
)

var cartCmd = &cobra.Command{
	Use:     "cart",
	Aliases: []string{"carrinho"},
	Short:   "Build the cart that 'checkout' submits",
}

var cartAddCmd = &cobra.Command{
	Use:   "add PRODUCT_ID",
	Short: "Add a product to the cart",
	Long: `Add a product to the cart. Adding a product already in the cart increases
its quantity. Name and price are recorded as they are now.`,
	Args: cobra.ExactArgs(1),
	RunE: runCartAdd,
}

var cartRemoveCmd = &cobra.Command{
	Use:     "remove PRODUCT_ID",
	Aliases: []string{"rm"},
	Short:   "Remove a product from the cart",
	Args:    cobra.ExactArgs(1),
	RunE:    runCartRemove,
}

var cartSetCmd = &cobra.Command{
	Use:   "set PRODUCT_ID QUANTITY",
	Short: "Set the quantity of a cart line (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart lines and total",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Submit the cart as an order",
	Long: `Submit the cart as an order. The cart is emptied only when the backend
accepts the order; a rejected order leaves it as it was.`,
	Args: cobra.NoArgs,
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(cartCmd, checkoutCmd)
	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartSetCmd, cartClearCmd, cartShowCmd)

	cartAddCmd.Flags().IntP("quantity", "q", 1, "units to add")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	quantity, _ := cmd.Flags().GetInt("quantity")
	payload := validator.AddToCartPayload{ProductID: id, Quantity: quantity}
	if err := payload.Validate(); err != nil {
		return validator.ValidationErrorResponse(err)
	}

	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		p, err := c.api.FindProduct(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := c.cart.AddItem(cmd.Context(), *p, quantity); err != nil {
			return err
		}
		c.printer.Success("Added %d × %s (%d items in cart)", quantity, p.Name, c.cart.Count())
		return nil
	})
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withConsole(cmd, func(c *console) error {
		if err := c.cart.RemoveItem(cmd.Context(), id); err != nil {
			return err
		}
		c.printer.Success("Removed product #%d", id)
		return nil
	})
}

func runCartSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Errorf("invalid quantity %q", args[1])
	}
	payload := validator.UpdateCartPayload{ProductID: id, Quantity: quantity}
	if err := payload.Validate(); err != nil {
		return validator.ValidationErrorResponse(err)
	}
	return withConsole(cmd, func(c *console) error {
		if err := c.cart.UpdateQuantity(cmd.Context(), id, quantity); err != nil {
			return err
		}
		c.printer.Success("Cart updated (%d items)", c.cart.Count())
		return nil
	})
}

func runCartClear(cmd *cobra.Command, args []string) error {
	return withConsole(cmd, func(c *console) error {
		if err := c.cart.Clear(cmd.Context()); err != nil {
			return err
		}
		c.printer.Success("Cart emptied")
		return nil
	})
}

func runCartShow(cmd *cobra.Command, args []string) error {
	return withConsole(cmd, func(c *console) error {
		items := c.cart.Items()
		if len(items) == 0 {
			c.printer.Info("The cart is empty.")
			return nil
		}
		table := output.NewTable(c.printer.Out(), []string{"ID", "PRODUCT", "UNIT PRICE", "QTY", "SUBTOTAL"})
		for _, it := range items {
			table.AddRow(
				strconv.FormatInt(it.ID, 10),
				it.Name,
				money.Format(it.Price),
				strconv.Itoa(it.Quantity),
				money.Format(it.Subtotal()),
			)
		}
		if err := table.Render(); err != nil {
			return err
		}
		c.printer.Print("%s %s", c.printer.Bold("Total:"), money.Format(c.cart.Total()))
		return nil
	})
}

func runCheckout(cmd *cobra.Command, args []string) error {
	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		total := c.cart.Total()
		id, err := c.cart.Checkout(cmd.Context(), c.api)
		if err != nil {
			return err
		}
		c.printer.Success("Order #%d placed, total %s", id, money.Format(total))
		return nil
	})
}
