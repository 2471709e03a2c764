package commands

import (
	"fmt"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/internal/cli/output"
	"github.com/leapstack-labs/roastery/internal/report"
	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/spf13/cobra"
)

// NewReportCommand creates the report command and its subcommands.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run a sales report",
		Long: `Run one of the sales reports against the configured database.

The report engine is chosen from the database URL scheme; results are
identical for sqlite, mysql and postgres.`,
	}

	cmd.AddCommand(newBirthdaysCommand())
	cmd.AddCommand(newTopProductsCommand())
	cmd.AddCommand(newLastOrdersCommand())

	return cmd
}

func newBirthdaysCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "Customers with a birthday today",
		Example: `  roastery report birthdays
  roastery report birthdays --date 2023-03-10 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var day *civil.Date
			if date != "" {
				d, err := civil.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				day = &d
			}

			return withReader(cmd, func(cc *CommandContext, rd *report.Reader) error {
				out, err := rd.Birthdays(cmd.Context(), day)
				if err != nil {
					return err
				}
				return renderBirthdays(cc.Renderer, out)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to report on as YYYY-MM-DD (default: today)")
	return cmd
}

func newTopProductsCommand() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:     "top-products",
		Short:   "Top ten selling products of a year",
		Example: `  roastery report top-products --year 2019`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReader(cmd, func(cc *CommandContext, rd *report.Reader) error {
				out, err := rd.TopSellingProducts(cmd.Context(), year)
				if err != nil {
					return err
				}
				return renderTopProducts(cc.Renderer, out)
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Calendar year to report on")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func newLastOrdersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "last-orders",
		Short: "Latest order date and email of every customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReader(cmd, func(cc *CommandContext, rd *report.Reader) error {
				out, err := rd.LastOrderPerCustomer(cmd.Context())
				if err != nil {
					return err
				}
				return renderLastOrders(cc.Renderer, out)
			})
		},
	}
}

func withReader(cmd *cobra.Command, fn func(*CommandContext, *report.Reader) error) error {
	cc := NewCommandContext(cmd)
	rd, err := cc.OpenReader(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rd.Close() }()
	return fn(cc, rd)
}

func renderBirthdays(r *output.Renderer, rows []core.Birthday) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"customers": rows})
	}
	table := make([][]any, 0, len(rows))
	for _, b := range rows {
		table = append(table, []any{b.CustomerID, b.CustomerFirstName})
	}
	r.Table([]string{"customer_id", "customer_first_name"}, table)
	return nil
}

func renderTopProducts(r *output.Renderer, rows []core.TopSellingProduct) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"products": rows})
	}
	table := make([][]any, 0, len(rows))
	for _, p := range rows {
		table = append(table, []any{p.ProductName, p.TotalSales})
	}
	r.Table([]string{"product_name", "total_sales"}, table)
	return nil
}

func renderLastOrders(r *output.Renderer, rows []core.LastOrder) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"customers": rows})
	}
	table := make([][]any, 0, len(rows))
	for _, o := range rows {
		table = append(table, []any{o.CustomerID, o.CustomerEmail, o.LastOrderDate})
	}
	r.Table([]string{"customer_id", "customer_email", "last_order_date"}, table)
	return nil
}
