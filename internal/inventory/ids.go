package inventory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces record ids and the short code of a sale checkout.
type IDGenerator interface {
	NewID() string
	CheckoutCode() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record ids.
// It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CheckoutCode returns six random upper-case hex characters.
func (UUIDv7Generator) CheckoutCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// SequenceGenerator returns predictable ids for tests: prefix1, prefix2, ...
// and checkout codes C00001, C00002, ...
type SequenceGenerator struct {
	mu       sync.Mutex
	prefix   string
	ids      int
	checkout int
}

// NewSequenceGenerator creates a SequenceGenerator.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids++
	return fmt.Sprintf("%s%d", g.prefix, g.ids)
}

func (g *SequenceGenerator) CheckoutCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkout++
	return fmt.Sprintf("C%05d", g.checkout)
}
