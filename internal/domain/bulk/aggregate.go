package bulk

import (
	"strings"

	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawSaleRow is one spreadsheet line of a sales export
type RawSaleRow struct {
	Line        int
	Date        string
	ClientName  string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// NewRawSaleRow builds a row from spreadsheet cell text. Client and product
// names are trimmed; price and quantity use the lenient spreadsheet parsers.
func NewRawSaleRow(line int, date, client, product, price, quantity string) RawSaleRow {
	return RawSaleRow{
		Line:        line,
		Date:        date,
		ClientName:  strings.TrimSpace(client),
		ProductName: strings.TrimSpace(product),
		UnitPrice:   ParseUnitPrice(price),
		Quantity:    ParseQuantity(quantity),
	}
}

// missingField returns the name of the first empty required field, or ""
func (r RawSaleRow) missingField() string {
	switch {
	case strings.TrimSpace(r.Date) == "":
		return "date"
	case strings.TrimSpace(r.ClientName) == "":
		return "client"
	case strings.TrimSpace(r.ProductName) == "":
		return "product"
	}
	return ""
}

// SaleLineAggregate is the merged line for one product inside a sale
type SaleLineAggregate struct {
	ProductID uuid.UUID
	Quantity  int
	// UnitPrice is the price of the most recently merged row.
	UnitPrice decimal.Decimal
	// AccumulatedProfit sums (price - cost) * quantity of every merged row,
	// each row at its own price.
	AccumulatedProfit decimal.Decimal
}

// merge folds one more row into the line
func (l *SaleLineAggregate) merge(price decimal.Decimal, quantity int, cost decimal.Decimal) {
	qty := decimal.NewFromInt(int64(quantity))
	l.Quantity += quantity
	l.UnitPrice = price
	l.AccumulatedProfit = l.AccumulatedProfit.Add(price.Sub(cost).Mul(qty))
}

// Amount returns the final unit price times the merged quantity
func (l *SaleLineAggregate) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// UnitProfit returns the accumulated profit spread over the merged quantity
func (l *SaleLineAggregate) UnitProfit() decimal.Decimal {
	if l.Quantity == 0 {
		return decimal.Zero
	}
	return l.AccumulatedProfit.Div(decimal.NewFromInt(int64(l.Quantity)))
}

// SaleKey groups rows into one sale
type SaleKey struct {
	Date       string
	ClientName string
}

// SaleAggregate collects every line sold to one client on one date
type SaleAggregate struct {
	Date       string
	ClientName string
	Items      map[uuid.UUID]*SaleLineAggregate
	order      []uuid.UUID
}

func newSaleAggregate(key SaleKey) *SaleAggregate {
	return &SaleAggregate{
		Date:       key.Date,
		ClientName: key.ClientName,
		Items:      make(map[uuid.UUID]*SaleLineAggregate),
	}
}

// Key returns the aggregate's grouping key
func (a *SaleAggregate) Key() SaleKey {
	return SaleKey{Date: a.Date, ClientName: a.ClientName}
}

// add merges a row into the line for productID, creating the line on first sight
func (a *SaleAggregate) add(productID uuid.UUID, price decimal.Decimal, quantity int, cost decimal.Decimal) {
	line, ok := a.Items[productID]
	if !ok {
		line = &SaleLineAggregate{ProductID: productID}
		a.Items[productID] = line
		a.order = append(a.order, productID)
	}
	line.merge(price, quantity, cost)
}

// Lines returns the lines in the order their products first appeared
func (a *SaleAggregate) Lines() []*SaleLineAggregate {
	lines := make([]*SaleLineAggregate, 0, len(a.order))
	for _, id := range a.order {
		lines = append(lines, a.Items[id])
	}
	return lines
}

// TotalAmount sums final unit price times quantity over all lines.
// When a product was merged at several prices this differs from the sum
// of the prices actually charged.
func (a *SaleAggregate) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range a.Items {
		total = total.Add(line.Amount())
	}
	return total
}

// TotalProfit sums the accumulated profit of all lines
func (a *SaleAggregate) TotalProfit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range a.Items {
		total = total.Add(line.AccumulatedProfit)
	}
	return total
}

// Totals returns the amount and profit recorded on the emitted sale header
func (a *SaleAggregate) Totals() (amount, profit decimal.Decimal) {
	return a.TotalAmount(), a.TotalProfit()
}

// DropReason explains why a row contributed nothing
type DropReason string

const (
	DropMalformed    DropReason = "malformed"
	DropUnrecognized DropReason = "unrecognized"
)

// DroppedRow records a row left out of every aggregate
type DroppedRow struct {
	Line          int
	Reason        DropReason
	Field         string // missing field for malformed rows
	ProductName   string
	CanonicalName string
}

// AggregationResult is the in-memory outcome of grouping a row set
type AggregationResult struct {
	TotalRows int
	// Sales are ordered by first occurrence of their key.
	Sales   []*SaleAggregate
	Dropped []DroppedRow
	// UnresolvedDates lists lines whose date could not be placed and was kept verbatim.
	UnresolvedDates []int
}

// Count returns how many rows were dropped for reason
func (r *AggregationResult) Count(reason DropReason) int {
	n := 0
	for _, d := range r.Dropped {
		if d.Reason == reason {
			n++
		}
	}
	return n
}

// UnrecognizedNames counts dropped rows per canonical product name
func (r *AggregationResult) UnrecognizedNames() map[string]int {
	names := make(map[string]int)
	for _, d := range r.Dropped {
		if d.Reason == DropUnrecognized {
			names[d.CanonicalName]++
		}
	}
	return names
}

// Catalog resolves canonical product names to catalog entries
type Catalog interface {
	Lookup(name string) (catalog.Entry, bool)
}

// Aggregator groups raw sale rows into per-client, per-day sales
type Aggregator struct {
	renames RenameTable
	catalog Catalog
}

// NewAggregator creates an Aggregator over a rename table and a catalog
func NewAggregator(renames RenameTable, cat Catalog) *Aggregator {
	return &Aggregator{renames: renames, catalog: cat}
}

// Aggregate processes rows in order. Row order decides which price wins
// when several rows merge into one line.
func (g *Aggregator) Aggregate(rows []RawSaleRow) *AggregationResult {
	result := &AggregationResult{TotalRows: len(rows)}
	byKey := make(map[SaleKey]*SaleAggregate)

	for _, row := range rows {
		if field := row.missingField(); field != "" {
			result.Dropped = append(result.Dropped, DroppedRow{
				Line:        row.Line,
				Reason:      DropMalformed,
				Field:       field,
				ProductName: row.ProductName,
			})
			continue
		}

		date, resolved := ResolveDate(row.Date)
		if !resolved {
			result.UnresolvedDates = append(result.UnresolvedDates, row.Line)
		}

		productName := strings.TrimSpace(row.ProductName)
		canonical := g.renames.Canonicalize(productName)
		entry, ok := g.catalog.Lookup(canonical)
		if !ok {
			result.Dropped = append(result.Dropped, DroppedRow{
				Line:          row.Line,
				Reason:        DropUnrecognized,
				ProductName:   productName,
				CanonicalName: canonical,
			})
			continue
		}

		key := SaleKey{Date: date, ClientName: strings.TrimSpace(row.ClientName)}
		sale, exists := byKey[key]
		if !exists {
			sale = newSaleAggregate(key)
			byKey[key] = sale
			result.Sales = append(result.Sales, sale)
		}
		sale.add(entry.ID, row.UnitPrice, row.Quantity, entry.CostBasis)
	}

	return result
}

// DistinctClients returns the trimmed client names of rows that carry a date,
// a client and a product, in first-occurrence order. Whether a row's product
// is in the catalog does not matter.
func DistinctClients(rows []RawSaleRow) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		if row.missingField() != "" {
			continue
		}
		name := strings.TrimSpace(row.ClientName)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
