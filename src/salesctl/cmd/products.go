package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/api"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/money"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/salesctl/internal/output"
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"produtos"},
	Short:   "Browse the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List products one page at a time",
	Long: `List products one page at a time.

Examples:
  salesctl products list                   # First page, sorted by name
  salesctl products list --page 2          # Second page
  salesctl products list --sort preco,desc # Most expensive first`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd)

	productsListCmd.Flags().Int("page", 1, "page number, starting at 1")
	productsListCmd.Flags().Int("size", 20, "products per page")
	productsListCmd.Flags().String("sort", "nome,asc", "sort order as field,direction")
}

func runProductsList(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	sort, _ := cmd.Flags().GetString("sort")
	if page < 1 || size < 1 {
		return errors.New("--page and --size must be at least 1")
	}

	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		p, err := c.api.ListProducts(cmd.Context(), api.PageRequest{Page: page - 1, Size: size, Sort: sort})
		if err != nil {
			return err
		}
		if len(p.Content) == 0 {
			c.printer.Info("No products on this page.")
			return nil
		}

		table := output.NewTable(c.printer.Out(), []string{"ID", "NAME", "PRICE", "STOCK"})
		for _, prod := range p.Content {
			table.AddRow(
				strconv.FormatInt(prod.ID, 10),
				prod.Name,
				money.Format(prod.Price),
				strconv.Itoa(prod.Stock),
			)
		}
		if err := table.Render(); err != nil {
			return err
		}
		c.printer.Print(c.printer.Dim("page %d of %d, %d products"), p.Number+1, p.TotalPages, p.TotalElements)
		return nil
	})
}
