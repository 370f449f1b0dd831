package models

// DefaultCategories is the fixed category seed.
var DefaultCategories = []string{"Beverages", "Snacks", "Dairy", "Produce", "Meat", "Bakery"}

// Snapshot is the whole application state; it is always persisted and synced as one unit.
type Snapshot struct {
	Products     []Product     `json:"products"`
	Categories   []string      `json:"categories"`
	Settings     Settings      `json:"settings"`
	Transactions []Transaction `json:"transactions"`
}

// RemoteData is the body of the bulk read endpoint. Settings is nil when the remote has none.
type RemoteData struct {
	Products     []Product     `json:"products"`
	Categories   []string      `json:"categories"`
	Settings     *Settings     `json:"settings"`
	Transactions []Transaction `json:"transactions"`
}

// DefaultSnapshot returns a fresh copy of the seed snapshot.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Products:     []Product{},
		Categories:   append([]string(nil), DefaultCategories...),
		Settings:     DefaultSettings(),
		Transactions: []Transaction{},
	}
}

// Clone returns a deep copy, so callers can hand snapshots across goroutines.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Products:     make([]Product, len(s.Products)),
		Categories:   make([]string, len(s.Categories)),
		Settings:     s.Settings,
		Transactions: make([]Transaction, len(s.Transactions)),
	}
	copy(out.Products, s.Products)
	copy(out.Categories, s.Categories)
	for i, t := range s.Transactions {
		if t.Price != nil {
			t.Price = Float64Ptr(*t.Price)
		}
		if t.Total != nil {
			t.Total = Float64Ptr(*t.Total)
		}
		out.Transactions[i] = t
	}
	return out
}

// FindProduct returns the index of the product with the given id, or -1.
func (s Snapshot) FindProduct(id string) int {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// HasCategory reports whether name is a known category.
func (s Snapshot) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}
