package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewReportCommand creates the report command group.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Dashboard figures, best sellers, low stock and sales trend",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Headline numbers for today and overall",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				sum := s.store.Summary(time.Now())
				return s.out.Result(sum, func() error {
					return s.out.Table([]string{"METRIC", "VALUE"}, [][]string{
						{"Products", strconv.Itoa(sum.TotalProducts)},
						{"Low stock items", strconv.Itoa(sum.LowStockItemsCount)},
						{"Sales today", strconv.Itoa(sum.SalesCountToday)},
						{"Revenue today", sum.Currency + " " + formatMoney(sum.TotalSalesToday)},
						{"Total revenue", sum.Currency + " " + formatMoney(sum.TotalSales)},
						{"Inventory value", sum.Currency + " " + formatMoney(sum.InventoryValue)},
					})
				})
			})
		},
	})

	var top int
	bestSellers := &cobra.Command{
		Use:   "best-sellers",
		Short: "Products ranked by units sold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				items := s.store.BestSellers(top)
				return s.out.Result(items, func() error {
					rows := make([][]string, 0, len(items))
					for _, it := range items {
						rows = append(rows, []string{strconv.Itoa(it.Rank), it.ProductName, it.CategoryName,
							strconv.Itoa(it.UnitsSold), formatMoney(it.Revenue)})
					}
					return s.out.Table([]string{"#", "PRODUCT", "CATEGORY", "SOLD", "REVENUE"}, rows)
				})
			})
		},
	}
	bestSellers.Flags().IntVarP(&top, "top", "n", 10, "how many products")
	cmd.AddCommand(bestSellers)

	cmd.AddCommand(&cobra.Command{
		Use:   "low-stock",
		Short: "Products at or below their reorder level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				items := s.store.LowStock()
				return s.out.Result(items, func() error {
					rows := make([][]string, 0, len(items))
					for _, it := range items {
						rows = append(rows, []string{it.ProductID, it.ProductName, strconv.Itoa(it.CurrentStock),
							strconv.Itoa(it.ReorderLevel), it.Status})
					}
					return s.out.Table([]string{"ID", "PRODUCT", "STOCK", "REORDER", "STATUS"}, rows)
				})
			})
		},
	})

	var days, trendTop int
	trend := &cobra.Command{
		Use:   "trend",
		Short: "Daily units sold for the top products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				tr := s.store.SalesTrend(time.Now(), days, trendTop)
				return s.out.Result(tr, func() error {
					header := []string{"PRODUCT"}
					for _, d := range tr.Days {
						header = append(header, time.UnixMilli(d).Format("01-02"))
					}
					rows := make([][]string, 0, len(tr.Series))
					for _, series := range tr.Series {
						row := []string{series.ProductName}
						for _, q := range series.Quantities {
							row = append(row, strconv.Itoa(q))
						}
						rows = append(rows, row)
					}
					if len(rows) == 0 {
						s.out.Printf("No sales in the last %d days\n", len(tr.Days))
						return nil
					}
					return s.out.Table(header, rows)
				})
			})
		},
	}
	trend.Flags().IntVar(&days, "days", 7, "window in days")
	trend.Flags().IntVar(&trendTop, "top", 5, "how many products")
	cmd.AddCommand(trend)

	return cmd
}
