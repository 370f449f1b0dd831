package inventory

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

type productCSVRow struct {
	ID       string `csv:"ID"`
	Name     string `csv:"Name"`
	Category string `csv:"Category"`
	Price    string `csv:"Price"`
	Stock    int    `csv:"Stock"`
	Sold     int    `csv:"Sold"`
}

// WriteProductsCSV writes the catalog with the header ID,Name,Category,Price,Stock,Sold.
func (s *Store) WriteProductsCSV(w io.Writer) error {
	products := s.Products()
	rows := make([]*productCSVRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productCSVRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    strconv.FormatFloat(p.Price, 'f', -1, 64),
			Stock:    p.Stock,
			Sold:     p.UnitsSold,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing products csv: %w", err)
	}
	return nil
}
