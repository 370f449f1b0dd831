package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mart_inventory/internal/models"
)

const (
	DefaultBestSellers = 10
	DefaultTrendDays   = 7
	DefaultTrendTop    = 5
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Summary computes the dashboard figures. "Today" starts at local midnight of now.
func (s *Store) Summary(now time.Time) models.DashboardSummary {
	snap := s.Snapshot()
	today := startOfDay(now).UnixMilli()

	out := models.DashboardSummary{
		TotalProducts: len(snap.Products),
		Currency:      snap.Settings.Currency,
	}
	value := decimal.Zero
	for _, p := range snap.Products {
		if p.IsLowStock() {
			out.LowStockItemsCount++
		}
		value = value.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	out.InventoryValue = value.InexactFloat64()

	revenue, revenueToday := decimal.Zero, decimal.Zero
	for _, t := range snap.Transactions {
		if t.Type != models.TransactionSale {
			continue
		}
		total := decimal.NewFromFloat(t.TotalValue())
		revenue = revenue.Add(total)
		if t.Timestamp >= today {
			out.SalesCountToday++
			revenueToday = revenueToday.Add(total)
		}
	}
	out.TotalSales = revenue.InexactFloat64()
	out.TotalSalesToday = revenueToday.InexactFloat64()
	return out
}

// BestSellers ranks products by units sold; n <= 0 means DefaultBestSellers.
func (s *Store) BestSellers(n int) []models.SalesReportItem {
	if n <= 0 {
		n = DefaultBestSellers
	}
	snap := s.Snapshot()

	revenue := make(map[string]decimal.Decimal)
	for _, t := range snap.Transactions {
		if t.Type == models.TransactionSale {
			revenue[t.ProductID] = revenue[t.ProductID].Add(decimal.NewFromFloat(t.TotalValue()))
		}
	}

	products := snap.Products
	sort.SliceStable(products, func(i, j int) bool { return products[i].UnitsSold > products[j].UnitsSold })
	if len(products) > n {
		products = products[:n]
	}

	out := make([]models.SalesReportItem, 0, len(products))
	for i, p := range products {
		out = append(out, models.SalesReportItem{
			Rank:         i + 1,
			ProductID:    p.ID,
			ProductName:  p.Name,
			CategoryName: p.Category,
			UnitsSold:    p.UnitsSold,
			Revenue:      revenue[p.ID].InexactFloat64(),
		})
	}
	return out
}

// LowStock lists products at or below their reorder level, in catalog order.
func (s *Store) LowStock() []models.InventoryReportItem {
	var out []models.InventoryReportItem
	for _, p := range s.Products() {
		if !p.IsLowStock() {
			continue
		}
		status := "Low Stock"
		if p.Stock <= 0 {
			status = "Out of Stock"
		}
		out = append(out, models.InventoryReportItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CategoryName: p.Category,
			CurrentStock: p.Stock,
			ReorderLevel: p.ReorderLevel,
			Status:       status,
		})
	}
	return out
}

// Transactions returns the log newest first, narrowed by filter.
func (s *Store) Transactions(filter models.TransactionFilter) []models.Transaction {
	snap := s.Snapshot()
	out := make([]models.Transaction, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		switch {
		case filter.Type != "" && t.Type != filter.Type:
		case filter.ProductID != "" && t.ProductID != filter.ProductID:
		case filter.CheckoutID != "" && t.CheckoutID != filter.CheckoutID:
		case filter.Since > 0 && t.Timestamp < filter.Since:
		default:
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// SalesTrend returns daily sold quantities for the top products over the last
// days days, today included.
func (s *Store) SalesTrend(now time.Time, days, top int) models.SalesTrend {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if top <= 0 {
		top = DefaultTrendTop
	}

	first := startOfDay(now).AddDate(0, 0, -(days - 1))
	trend := models.SalesTrend{Days: make([]int64, days)}
	for i := range trend.Days {
		trend.Days[i] = first.AddDate(0, 0, i).UnixMilli()
	}

	type agg struct {
		name  string
		total int
		daily []int
	}
	byProduct := make(map[string]*agg)
	var order []string
	for _, t := range s.Transactions(models.TransactionFilter{Type: models.TransactionSale, Since: trend.Days[0]}) {
		a, ok := byProduct[t.ProductID]
		if !ok {
			a = &agg{name: t.ProductName, daily: make([]int, days)}
			byProduct[t.ProductID] = a
			order = append(order, t.ProductID)
		}
		a.total += t.Quantity
		for d := days - 1; d >= 0; d-- {
			if t.Timestamp >= trend.Days[d] {
				a.daily[d] += t.Quantity
				break
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return byProduct[order[i]].total > byProduct[order[j]].total })
	if len(order) > top {
		order = order[:top]
	}
	for _, id := range order {
		a := byProduct[id]
		trend.Series = append(trend.Series, models.TrendSeries{ProductID: id, ProductName: a.name, Quantities: a.daily})
	}
	return trend
}
