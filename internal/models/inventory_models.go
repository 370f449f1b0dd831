package models

// Product is a catalog entry with its current stock level.
// Category is a soft reference to a category name; nothing enforces that it exists.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	ReorderLevel int     `json:"reorderLevel"`
	UnitsSold    int     `json:"unitsSold"`
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.ReorderLevel
}

// TransactionType enumerates the kinds of stock movements in the log.
type TransactionType string

const (
	TransactionSale        TransactionType = "SALE"
	TransactionStockAdd    TransactionType = "STOCK_ADD"
	TransactionStockAdjust TransactionType = "STOCK_ADJUST"
)

// Valid reports whether t is one of the current enumeration values.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionSale, TransactionStockAdd, TransactionStockAdjust:
		return true
	default:
		return false
	}
}

// Transaction is one entry of the append-only stock movement log.
// Timestamp is epoch milliseconds taken from the client clock.
type Transaction struct {
	ID          string          `json:"id"`
	CheckoutID  string          `json:"checkoutId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Type        TransactionType `json:"type"`
	Quantity    int             `json:"quantity"`
	Price       *float64        `json:"price,omitempty"`
	Total       *float64        `json:"total,omitempty"`
	Timestamp   int64           `json:"timestamp"`
}

// TotalValue returns Total, or zero when the entry carries none.
func (t Transaction) TotalValue() float64 {
	if t.Total == nil {
		return 0
	}
	return *t.Total
}

// Float64Ptr is a helper for the optional money fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
