package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is the read-only view of a product used while reconciling sales
type Entry struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	CostBasis      decimal.Decimal
}

// NormalizeName returns the catalog lookup key for a product name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Index maps normalized product names to catalog entries.
// It is built once per run and never mutated afterwards.
type Index struct {
	entries    map[string]Entry
	duplicates []string
}

// NewIndex builds an index from a product list. When two products share a
// normalized name the later one wins and the key is reported by Duplicates.
func NewIndex(products []Product) *Index {
	idx := &Index{entries: make(map[string]Entry, len(products))}
	for i := range products {
		p := &products[i]
		key := NormalizeName(p.Name)
		if key == "" {
			continue
		}
		if _, exists := idx.entries[key]; exists {
			idx.duplicates = append(idx.duplicates, key)
		}
		idx.entries[key] = Entry{
			ID:             p.ID,
			Name:           p.Name,
			NormalizedName: key,
			CostBasis:      p.CostBasis(),
		}
	}
	return idx
}

// Lookup finds the entry for a product name, normalizing it first
func (i *Index) Lookup(name string) (Entry, bool) {
	e, ok := i.entries[NormalizeName(name)]
	return e, ok
}

// Len returns the number of distinct keys
func (i *Index) Len() int {
	return len(i.entries)
}

// Duplicates returns the keys that appeared more than once while building
func (i *Index) Duplicates() []string {
	return i.duplicates
}
