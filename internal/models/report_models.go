package models

// SalesReportItem is one row of the best sellers ranking.
type SalesReportItem struct {
	Rank         int     `json:"rank"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	CategoryName string  `json:"category_name"`
	UnitsSold    int     `json:"units_sold"`
	Revenue      float64 `json:"revenue"`
}

// InventoryReportItem describes one product on the low stock watchlist.
type InventoryReportItem struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	CategoryName string `json:"category_name"`
	CurrentStock int    `json:"current_stock"`
	ReorderLevel int    `json:"reorder_level"`
	Status       string `json:"status"` // "Low Stock" or "Out of Stock"
}

// DashboardSummary holds the headline numbers of the store.
type DashboardSummary struct {
	TotalProducts      int     `json:"total_products"`
	LowStockItemsCount int     `json:"low_stock_items_count"`
	InventoryValue     float64 `json:"inventory_value"`
	SalesCountToday    int     `json:"sales_count_today"`
	TotalSalesToday    float64 `json:"total_sales_today"`
	TotalSales         float64 `json:"total_sales"`
	Currency           string  `json:"currency"`
}

// TransactionFilter narrows the transaction log. Zero values match everything.
type TransactionFilter struct {
	Type       TransactionType
	ProductID  string
	CheckoutID string
	Since      int64 // epoch ms, inclusive
	Limit      int
}

// TrendSeries is the daily sold quantity of one product.
type TrendSeries struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantities  []int  `json:"quantities"`
}

// SalesTrend holds the top products' daily sales over a window of days.
// Days are local midnights in epoch ms, oldest first.
type SalesTrend struct {
	Days   []int64       `json:"days"`
	Series []TrendSeries `json:"series"`
}
