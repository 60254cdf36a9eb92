package cmd

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/money"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/orders"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/salesctl/internal/output"
)

const dateLayout = "02/01/2006 15:04"

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"pedidos"},
	Short:   "Track orders and move them through their lifecycle",
	Long: `Track orders and move them through their lifecycle.

Customers see their own orders. Administrators and sellers see every order
and may finish or cancel one that is pending approval or in progress.`,
}

var ordersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List orders",
	Args:    cobra.NoArgs,
	RunE:    runOrdersList,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show ORDER_ID",
	Short: "Show an order with its items",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

var ordersFinishCmd = &cobra.Command{
	Use:   "finish ORDER_ID",
	Short: "Mark an order as finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], model.OrderStatusFinished)
	},
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel ORDER_ID",
	Short: "Cancel an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], model.OrderStatusCanceled)
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersFinishCmd, ordersCancelCmd)
}

func formatDate(ts model.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(dateLayout)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		list, err := c.orders.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			c.printer.Info("No orders yet.")
			return nil
		}
		table := output.NewTable(c.printer.Out(), []string{"ID", "DATE", "CUSTOMER", "STATUS", "TOTAL"})
		for _, o := range list {
			table.AddRow(
				strconv.FormatInt(o.ID, 10),
				formatDate(o.CreatedAt),
				o.CustomerName,
				c.printer.StatusBadge(o.Status),
				money.Format(o.Total),
			)
		}
		return table.Render()
	})
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		o, err := c.orders.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		printOrder(c, *o)
		return nil
	})
}

func printOrder(c *console, o model.Order) {
	p := c.printer
	p.Header("Order #" + strconv.FormatInt(o.ID, 10))
	p.Print("%s %s", p.Bold("status:  "), p.StatusBadge(o.Status))
	p.Print("%s %s", p.Bold("date:    "), formatDate(o.CreatedAt))
	if o.CustomerName != "" {
		p.Print("%s %s <%s>", p.Bold("customer:"), o.CustomerName, o.CustomerEmail)
	}
	p.Print("")

	table := output.NewTable(p.Out(), []string{"PRODUCT", "QTY", "UNIT PRICE", "SUBTOTAL"})
	for _, it := range o.Items {
		table.AddRow(it.ProductName, strconv.Itoa(it.Quantity), money.Format(it.UnitPrice), money.Format(it.Subtotal()))
	}
	if table.Len() > 0 {
		if err := table.Render(); err != nil {
			logger.WithField("error", err).Debug("rendering order items")
		}
	}
	p.Print("%s %s", p.Bold("Total:"), money.Format(o.Total))

	if targets := c.orders.AvailableTransitions(o); len(targets) > 0 {
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.Label()
		}
		p.Print("%s", p.Dim("Can be moved to: "+strings.Join(names, ", ")))
	}
}

func runTransition(cmd *cobra.Command, arg string, next model.OrderStatus) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		o, err := c.orders.Transition(cmd.Context(), id, next)
		if errors.Is(err, orders.ErrRefreshFailed) {
			logger.WithField("error", err).Debug("reloading order")
			c.printer.Warning("Order #%d is now %s, but it could not be reloaded.", id, next.Label())
			return nil
		}
		if err != nil {
			return err
		}
		c.printer.Success("Order #%d is now %s", o.ID, o.Status.Label())
		return nil
	})
}
