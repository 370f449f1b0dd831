// Package normalize maps loosely typed storage rows onto the snapshot models.
//
// Rows may come from the current schema, from tables created by older tools
// (quantity / reorder_level / sales_count columns, timestamps in seconds) or
// from decoded JSON. Column names are matched ignoring case and underscores,
// so "reorderLevel", "reorderlevel" and "reorder_level" are the same key.
package normalize

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"mart_inventory/internal/models"
)

// SecondsThreshold separates second-resolution timestamps from millisecond ones.
// Any value below it is taken to be in seconds.
const SecondsThreshold int64 = 10_000_000_000

const (
	DefaultProductName  = "Unnamed Product"
	DefaultCategoryName = "Uncategorized"
	DefaultReorderLevel = 10
	UnknownProductName  = "Unknown Product"
)

// Row returns a copy of row keyed by canonical column names.
func Row(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out[canonicalKey(k)] = v
	}
	return out
}

func canonicalKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

// first returns the first non-nil value among keys; keys must already be canonical.
func first(row map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringOr(row map[string]any, fallback string, keys ...string) string {
	v, ok := first(row, keys...)
	if !ok {
		return fallback
	}
	s := cast.ToString(v)
	if s == "" {
		return fallback
	}
	return s
}

func intOr(row map[string]any, fallback int, keys ...string) int {
	v, ok := first(row, keys...)
	if !ok {
		return fallback
	}
	return cast.ToInt(v)
}

func float(row map[string]any, keys ...string) float64 {
	v, ok := first(row, keys...)
	if !ok {
		return 0
	}
	return cast.ToFloat64(v)
}

// Product maps a products row.
func Product(raw map[string]any) models.Product {
	row := Row(raw)
	return models.Product{
		ID:           stringOr(row, "", "id"),
		Name:         stringOr(row, DefaultProductName, "name"),
		Category:     stringOr(row, DefaultCategoryName, "category"),
		Price:        float(row, "price"),
		Stock:        intOr(row, 0, "stock", "quantity"),
		ReorderLevel: intOr(row, DefaultReorderLevel, "reorderlevel"),
		UnitsSold:    intOr(row, 0, "unitssold", "salescount"),
	}
}

// Transaction maps a transactions row. Price and Total are always set on the result;
// a missing or zero total is recomputed as price × quantity.
func Transaction(raw map[string]any) models.Transaction {
	row := Row(raw)
	qty := intOr(row, 0, "quantity")
	price := float(row, "price")
	total := float(row, "total")
	if total == 0 {
		total = price * float64(qty)
	}

	return models.Transaction{
		ID:          stringOr(row, "", "id"),
		CheckoutID:  stringOr(row, "", "checkoutid"),
		ProductID:   stringOr(row, "", "productid"),
		ProductName: stringOr(row, UnknownProductName, "productname"),
		Type:        TransactionType(stringOr(row, "", "type")),
		Quantity:    qty,
		Price:       models.Float64Ptr(price),
		Total:       models.Float64Ptr(total),
		Timestamp:   timestampValue(row),
	}
}

func timestampValue(row map[string]any) int64 {
	v, ok := first(row, "timestamp")
	if !ok {
		return 0
	}
	if ts, err := cast.ToInt64E(v); err == nil {
		return Timestamp(ts)
	}
	// Older tools stored DATETIME text.
	if t, err := cast.ToTimeE(v); err == nil {
		return t.UnixMilli()
	}
	return 0
}

// Settings maps the settings row. A nil or empty row yields nil.
func Settings(raw map[string]any) *models.Settings {
	if len(raw) == 0 {
		return nil
	}
	row := Row(raw)
	return &models.Settings{
		MartName:      stringOr(row, "", "martname"),
		AdminName:     stringOr(row, "", "adminname"),
		Address:       stringOr(row, "", "address"),
		Contact:       stringOr(row, "", "contact"),
		Currency:      stringOr(row, "", "currency"),
		AccessPIN:     stringOr(row, "", "accesspin"),
		UseExternalDB: cast.ToBool(row["useexternaldb"]),
		APIEndpoint:   stringOr(row, "", "apiendpoint"),
	}
}

// Timestamp scales second-resolution timestamps to milliseconds.
func Timestamp(ts int64) int64 {
	if ts < SecondsThreshold {
		return ts * int64(time.Second/time.Millisecond)
	}
	return ts
}

// TransactionType remaps legacy spellings onto the current enumeration.
// Unknown values are passed through unchanged.
func TransactionType(t string) models.TransactionType {
	switch t {
	case "ADDITION":
		return models.TransactionStockAdd
	case "ADJUSTMENT":
		return models.TransactionStockAdjust
	default:
		return models.TransactionType(t)
	}
}
