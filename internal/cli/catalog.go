package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mart_inventory/internal/inventory"
	"mart_inventory/internal/models"
)

// NewCategoriesCommand creates the categories command group.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "List, add and remove categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				categories := s.store.Categories()
				return s.out.Result(categories, func() error {
					for _, c := range categories {
						s.out.Printf("%s\n", c)
					}
					return nil
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, true, func(s *session) error {
				if err := s.store.AddCategory(args[0]); err != nil {
					return err
				}
				s.out.Printf("Added category %q\n", strings.TrimSpace(args[0]))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a category (products keep their category text)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, true, func(s *session) error {
				if err := s.store.RemoveCategory(args[0]); err != nil {
					return err
				}
				s.out.Printf("Removed category %q\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

// productFlags are shared by products add and products edit.
type productFlags struct {
	name     string
	category string
	price    float64
	stock    int
	reorder  int
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().Float64Var(&f.price, "price", 0, "unit price")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "units in stock")
	cmd.Flags().IntVar(&f.reorder, "reorder", 10, "reorder level")
}

// NewProductsCommand creates the products command group.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "List, add and edit products",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsAddCommand(rootOpts))
	cmd.AddCommand(newProductsEditCommand(rootOpts))
	return cmd
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		category string
		search   string
		lowOnly  bool
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, false, func(s *session) error {
				var products []models.Product
				for _, p := range s.store.Products() {
					if category != "" && p.Category != category {
						continue
					}
					if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) &&
						!strings.Contains(strings.ToLower(p.ID), strings.ToLower(search)) {
						continue
					}
					if lowOnly && !p.IsLowStock() {
						continue
					}
					products = append(products, p)
				}
				return s.out.Result(products, func() error {
					rows := make([][]string, 0, len(products))
					for _, p := range products {
						rows = append(rows, []string{p.ID, p.Name, p.Category, formatMoney(p.Price),
							strconv.Itoa(p.Stock), strconv.Itoa(p.ReorderLevel), strconv.Itoa(p.UnitsSold)})
					}
					return s.out.Table([]string{"ID", "NAME", "CATEGORY", "PRICE", "STOCK", "REORDER", "SOLD"}, rows)
				})
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&search, "search", "", "match name or id")
	cmd.Flags().BoolVar(&lowOnly, "low", false, "only products at or below their reorder level")
	return cmd
}

func newProductsAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &productFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product; its opening stock is logged as STOCK_ADD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, true, func(s *session) error {
				p, err := s.store.AddProduct(inventory.NewProduct{
					Name:         flags.name,
					Category:     flags.category,
					Price:        flags.price,
					Stock:        flags.stock,
					ReorderLevel: flags.reorder,
				})
				if err != nil {
					return err
				}
				return s.out.Result(p, func() error {
					s.out.Printf("Added %s (%s)\n", p.Name, p.ID)
					return nil
				})
			})
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProductsEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &productFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product; a stock change is logged as STOCK_ADJUST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, true, func(s *session) error {
				p, err := s.store.Product(args[0])
				if err != nil {
					return err
				}
				changed := cmd.Flags().Changed
				if changed("name") {
					p.Name = flags.name
				}
				if changed("category") {
					p.Category = flags.category
				}
				if changed("price") {
					p.Price = flags.price
				}
				if changed("stock") {
					p.Stock = flags.stock
				}
				if changed("reorder") {
					p.ReorderLevel = flags.reorder
				}
				p, err = s.store.UpdateProduct(p)
				if err != nil {
					return err
				}
				return s.out.Result(p, func() error {
					s.out.Printf("Updated %s (%s): stock %d\n", p.Name, p.ID, p.Stock)
					return nil
				})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
