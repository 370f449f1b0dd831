package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"mart_inventory/internal/inventory"
	"mart_inventory/internal/models"
)

// parseSaleItems parses "<id>=<qty>" arguments.
func parseSaleItems(args []string) ([]inventory.SaleItem, error) {
	items := make([]inventory.SaleItem, 0, len(args))
	for _, arg := range args {
		id, rawQty, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid cart line %q: want <id>=<qty>", arg)
		}
		qty, err := cast.ToIntE(strings.TrimSpace(rawQty))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
		}
		items = append(items, inventory.SaleItem{ProductID: strings.TrimSpace(id), Quantity: qty})
	}
	return items, nil
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <id>=<qty>...",
		Short: "Sell a cart of products under one checkout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseSaleItems(args)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, true, func(s *session) error {
				receipt, err := s.store.BulkSale(items)
				if err != nil {
					return err
				}
				return s.out.Result(receipt, func() error {
					rows := make([][]string, 0, len(receipt.Lines))
					for _, l := range receipt.Lines {
						rows = append(rows, []string{l.ProductName, strconv.Itoa(l.Quantity), formatMoney(l.Price), formatMoney(l.Total)})
					}
					s.out.Printf("Checkout %s\n", receipt.CheckoutID)
					if err := s.out.Table([]string{"ITEM", "QTY", "PRICE", "TOTAL"}, rows); err != nil {
						return err
					}
					s.out.Printf("Total: %s %s\n", receipt.Currency, formatMoney(receipt.Total))
					return nil
				})
			})
		},
	}
}

// NewAdjustCommand creates the adjust command.
func NewAdjustCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:     "adjust <id> <delta>",
		Short:   "Change a product's stock by delta (negative to remove)",
		Example: "  martctl adjust P1 5\n  martctl adjust --reason damaged P1 -- -2",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := cast.ToIntE(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[1], err)
			}
			return withSession(rootOpts, cmd, true, func(s *session) error {
				p, err := s.store.AdjustStock(args[0], delta, reason)
				if err != nil {
					return err
				}
				return s.out.Result(p, func() error {
					s.out.Printf("%s stock is now %d\n", p.Name, p.Stock)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the stock changed")
	return cmd
}

// NewTransactionsCommand creates the transactions command.
func NewTransactionsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		txnType  string
		product  string
		checkout string
		since    time.Duration
		limit    int
	)
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"log"},
		Short:   "Show the transaction log, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				filter := models.TransactionFilter{
					Type:       models.TransactionType(strings.ToUpper(txnType)),
					ProductID:  product,
					CheckoutID: checkout,
					Limit:      limit,
				}
				if since > 0 {
					filter.Since = time.Now().Add(-since).UnixMilli()
				}
				txns := s.store.Transactions(filter)
				return s.out.Result(txns, func() error {
					rows := make([][]string, 0, len(txns))
					for _, t := range txns {
						rows = append(rows, []string{
							time.UnixMilli(t.Timestamp).Format("2006-01-02 15:04:05"),
							t.CheckoutID, string(t.Type), t.ProductName,
							strconv.Itoa(t.Quantity), formatMoney(t.TotalValue()),
						})
					}
					return s.out.Table([]string{"TIME", "CHECKOUT", "TYPE", "PRODUCT", "QTY", "TOTAL"}, rows)
				})
			})
		},
	}
	cmd.Flags().StringVar(&txnType, "type", "", "SALE, STOCK_ADD or STOCK_ADJUST")
	cmd.Flags().StringVar(&product, "product", "", "product id")
	cmd.Flags().StringVar(&checkout, "checkout", "", "checkout id")
	cmd.Flags().DurationVar(&since, "since", 0, "only entries newer than this, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries (0 for all)")
	return cmd
}
