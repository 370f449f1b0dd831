// Package inventory holds the in-memory store state and the operations that
// mutate it. Every mutation schedules a debounced save of the whole snapshot.
package inventory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"mart_inventory/internal/models"
	"mart_inventory/internal/normalize"
	"mart_inventory/pkg/utils"
)

// DefaultSaveDelay is how long the store waits after the last mutation before saving.
const DefaultSaveDelay = time.Second

// Persister loads and saves whole snapshots.
type Persister interface {
	Load(ctx context.Context) models.Snapshot
	Save(ctx context.Context, snap models.Snapshot) bool
}

// Option configures a Store.
type Option func(*Store)

// WithSaveDelay sets the debounce window.
func WithSaveDelay(d time.Duration) Option {
	return func(s *Store) { s.saveDelay = d }
}

// WithIDGenerator replaces the id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the domain state container. It is safe for concurrent use.
type Store struct {
	persister Persister
	ids       IDGenerator
	now       func() time.Time
	saveDelay time.Duration
	saver     *debouncer

	mu    sync.Mutex
	state models.Snapshot
	ready bool
	dirty bool

	// saveMu serializes saves so a timer firing during Flush cannot persist twice.
	saveMu sync.Mutex
}

// New creates a Store. Call Load before anything else.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		ids:       UUIDv7Generator{},
		now:       time.Now,
		saveDelay: DefaultSaveDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.saver = newDebouncer(s.saveDelay, func() { s.persist(context.Background()) })
	return s
}

// Load reads the snapshot through the persister and marks the store ready.
func (s *Store) Load(ctx context.Context) {
	snap := s.persister.Load(ctx)
	fillEmpty(&snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap
	s.ready = true
	s.dirty = false
}

// Ready reports whether Load has completed.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func fillEmpty(snap *models.Snapshot) {
	if snap.Products == nil {
		snap.Products = []models.Product{}
	}
	if snap.Categories == nil {
		snap.Categories = []string{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []models.Transaction{}
	}
}

// read runs fn under the lock once the store is loaded.
func (s *Store) read(fn func(st *models.Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotLoaded
	}
	fn(&s.state)
	return nil
}

// update applies fn and, when it succeeds, schedules a save. fn must either
// fail without touching the state or apply all of its changes.
func (s *Store) update(fn func(st *models.Snapshot) error) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	s.dirty = true
	s.mu.Unlock()

	s.saver.trigger()
	return nil
}

// persist hands the current snapshot to the persister when there are unsaved changes.
func (s *Store) persist(ctx context.Context) bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return true
	}
	snap := s.state.Clone()
	s.dirty = false
	s.mu.Unlock()

	ok := s.persister.Save(ctx, snap)
	if !ok {
		utils.LogWarn(nil, "Snapshot save did not reach every store", map[string]interface{}{
			"products":     len(snap.Products),
			"transactions": len(snap.Transactions),
		})
	}
	return ok
}

// Flush cancels the pending save and saves now. It reports whether the
// persister accepted the snapshot everywhere.
func (s *Store) Flush(ctx context.Context) bool {
	s.saver.cancel()
	return s.persist(ctx)
}

// Close flushes and stops scheduling saves.
func (s *Store) Close(ctx context.Context) bool {
	s.saver.stop()
	return s.persist(ctx)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// ---- categories ----

// Categories returns the category names in insertion order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.Categories...)
}

// AddCategory appends a trimmed, non-empty, unique category name.
func (s *Store) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	return s.update(func(st *models.Snapshot) error {
		if st.HasCategory(name) {
			return fmt.Errorf("%w: %q", ErrCategoryExists, name)
		}
		st.Categories = append(st.Categories, name)
		return nil
	})
}

// RemoveCategory deletes a category name. Products keep their category string.
func (s *Store) RemoveCategory(name string) error {
	return s.update(func(st *models.Snapshot) error {
		for i, c := range st.Categories {
			if c == name {
				st.Categories = append(st.Categories[:i:i], st.Categories[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	})
}

// ---- products ----

// NewProduct is the input of AddProduct.
type NewProduct struct {
	Name         string
	Category     string
	Price        float64
	Stock        int
	ReorderLevel int
}

func validateProduct(name string, price float64, reorder int) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: product name is required", ErrValidation)
	case price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	case reorder < 0:
		return fmt.Errorf("%w: reorder level must not be negative", ErrValidation)
	}
	return nil
}

// Products returns a copy of the catalog.
func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.state.Products...)
}

// Product returns the product with id.
func (s *Store) Product(id string) (models.Product, error) {
	var (
		p     models.Product
		found bool
	)
	err := s.read(func(st *models.Snapshot) {
		if i := st.FindProduct(id); i >= 0 {
			p, found = st.Products[i], true
		}
	})
	if err != nil {
		return p, err
	}
	if !found {
		return p, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// AddProduct creates a product and logs its opening stock as a STOCK_ADD entry.
func (s *Store) AddProduct(in NewProduct) (models.Product, error) {
	if err := validateProduct(in.Name, in.Price, in.ReorderLevel); err != nil {
		return models.Product{}, err
	}
	if in.Stock < 0 {
		return models.Product{}, fmt.Errorf("%w: opening stock must not be negative", ErrValidation)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = normalize.DefaultCategoryName
	}

	product := models.Product{
		ID:           s.ids.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Category:     category,
		Price:        in.Price,
		Stock:        in.Stock,
		ReorderLevel: in.ReorderLevel,
	}
	err := s.update(func(st *models.Snapshot) error {
		ts := s.nowMillis()
		st.Products = append(st.Products, product)
		s.prependTransactions(st, models.Transaction{
			ID:          s.ids.NewID(),
			CheckoutID:  "STOCK-" + strconv.FormatInt(ts, 10),
			ProductID:   product.ID,
			ProductName: product.Name,
			Type:        models.TransactionStockAdd,
			Quantity:    product.Stock,
			Total:       models.Float64Ptr(lineTotal(product.Price, product.Stock)),
			Timestamp:   ts,
		})
		return nil
	})
	return product, err
}

// UpdateProduct replaces the stored product with the same id. A stock change is
// logged as a STOCK_ADJUST entry for the absolute difference.
func (s *Store) UpdateProduct(p models.Product) (models.Product, error) {
	if err := validateProduct(p.Name, p.Price, p.ReorderLevel); err != nil {
		return models.Product{}, err
	}
	p.Name = strings.TrimSpace(p.Name)
	err := s.update(func(st *models.Snapshot) error {
		i := st.FindProduct(p.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProductNotFound, p.ID)
		}
		s.recordAdjustment(st, st.Products[i], p)
		st.Products[i] = p
		return nil
	})
	return p, err
}

// AdjustStock changes a product's stock by delta. reason is only logged.
func (s *Store) AdjustStock(id string, delta int, reason string) (models.Product, error) {
	if delta == 0 {
		return models.Product{}, ErrInvalidQuantity
	}
	var updated models.Product
	err := s.update(func(st *models.Snapshot) error {
		i := st.FindProduct(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		updated = st.Products[i]
		updated.Stock += delta
		s.recordAdjustment(st, st.Products[i], updated)
		st.Products[i] = updated
		return nil
	})
	if err == nil {
		utils.LogInfo("Stock adjusted", map[string]interface{}{"product_id": id, "delta": delta, "reason": reason})
	}
	return updated, err
}

func (s *Store) recordAdjustment(st *models.Snapshot, before, after models.Product) {
	if before.Stock == after.Stock {
		return
	}
	diff := after.Stock - before.Stock
	if diff < 0 {
		diff = -diff
	}
	if after.Stock < 0 {
		utils.LogWarn(nil, "Stock set below zero", map[string]interface{}{"product_id": after.ID, "stock": after.Stock})
	}
	ts := s.nowMillis()
	s.prependTransactions(st, models.Transaction{
		ID:          s.ids.NewID(),
		CheckoutID:  "ADJ-" + strconv.FormatInt(ts, 10),
		ProductID:   after.ID,
		ProductName: after.Name,
		Type:        models.TransactionStockAdjust,
		Quantity:    diff,
		Total:       models.Float64Ptr(lineTotal(after.Price, diff)),
		Timestamp:   ts,
	})
}

// prependTransactions keeps the log newest first.
func (s *Store) prependTransactions(st *models.Snapshot, txns ...models.Transaction) {
	st.Transactions = append(txns, st.Transactions...)
}

// ---- sales ----

// SaleItem is one cart line.
type SaleItem struct {
	ProductID string
	Quantity  int
}

// ReceiptLine is one sold line.
type ReceiptLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
	Total       float64
}

// Receipt summarizes a completed checkout.
type Receipt struct {
	CheckoutID string
	Lines      []ReceiptLine
	Total      float64
	Currency   string
	Timestamp  int64
}

// Sell sells qty units of one product.
func (s *Store) Sell(id string, qty int) (Receipt, error) {
	return s.BulkSale([]SaleItem{{ProductID: id, Quantity: qty}})
}

// BulkSale sells a whole cart under one checkout id. Every line is checked
// against the stock (lines for the same product are added up) before anything
// changes, so a failing cart leaves the store untouched.
func (s *Store) BulkSale(items []SaleItem) (Receipt, error) {
	if len(items) == 0 {
		return Receipt{}, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return Receipt{}, fmt.Errorf("%w: %s x %d", ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
	}

	var receipt Receipt
	err := s.update(func(st *models.Snapshot) error {
		wanted := make(map[string]int, len(items))
		for _, item := range items {
			wanted[item.ProductID] += item.Quantity
		}
		for id, qty := range wanted {
			i := st.FindProduct(id)
			if i < 0 {
				return fmt.Errorf("%w: %s", ErrProductNotFound, id)
			}
			if p := st.Products[i]; qty > p.Stock {
				return fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, p.Name, p.Stock, qty)
			}
		}

		ts := s.nowMillis()
		receipt = Receipt{
			CheckoutID: "SALE-" + s.ids.CheckoutCode(),
			Currency:   st.Settings.Currency,
			Timestamp:  ts,
		}
		txns := make([]models.Transaction, 0, len(items))
		totals := make([]float64, 0, len(items))
		for _, item := range items {
			i := st.FindProduct(item.ProductID)
			p := &st.Products[i]
			p.Stock -= item.Quantity
			p.UnitsSold += item.Quantity

			total := lineTotal(p.Price, item.Quantity)
			totals = append(totals, total)
			receipt.Lines = append(receipt.Lines, ReceiptLine{
				ProductID: p.ID, ProductName: p.Name, Quantity: item.Quantity, Price: p.Price, Total: total,
			})
			txns = append(txns, models.Transaction{
				ID:          s.ids.NewID(),
				CheckoutID:  receipt.CheckoutID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Type:        models.TransactionSale,
				Quantity:    item.Quantity,
				Price:       models.Float64Ptr(p.Price),
				Total:       models.Float64Ptr(total),
				Timestamp:   ts,
			})
		}
		receipt.Total = sum(totals...)
		s.prependTransactions(st, txns...)
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// ---- settings ----

// Settings returns the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// UpdateSettings replaces the settings.
func (s *Store) UpdateSettings(settings models.Settings) error {
	settings.MartName = strings.TrimSpace(settings.MartName)
	settings.APIEndpoint = strings.TrimSpace(settings.APIEndpoint)
	switch {
	case settings.MartName == "":
		return fmt.Errorf("%w: store name is required", ErrValidation)
	case settings.UseExternalDB && settings.APIEndpoint == "":
		return fmt.Errorf("%w: an API endpoint is required when external sync is on", ErrValidation)
	}
	return s.update(func(st *models.Snapshot) error {
		st.Settings = settings
		return nil
	})
}

// Unlock checks pin against the access PIN. A store without a PIN is always open.
func (s *Store) Unlock(pin string) error {
	settings := s.Settings()
	if !settings.PINRequired() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(pin), []byte(settings.AccessPIN)) != 1 {
		return ErrInvalidPIN
	}
	return nil
}

// ImportSnapshot replaces the whole state verbatim.
func (s *Store) ImportSnapshot(snap models.Snapshot) error {
	snap = snap.Clone()
	fillEmpty(&snap)
	return s.update(func(st *models.Snapshot) error {
		*st = snap
		return nil
	})
}
