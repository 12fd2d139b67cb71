package engine

import (
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// PriceKey identifies one contract quote on one day.
type PriceKey struct {
	Date       time.Time
	Expiration time.Time
	Strike     float64
	OptionType models.OptionType
}

// PriceTable is a constant-time index from (day, expiration, strike,
// option type) to that day's quote, plus the sorted unique trading days.
type PriceTable struct {
	quotes map[PriceKey]models.QuoteSnapshot
	days   []time.Time
}

// BuildPriceTable indexes the chain in a single pass. Duplicate keys
// resolve last-writer-wins.
func BuildPriceTable(c *chain.Chain) *PriceTable {
	t := &PriceTable{
		quotes: make(map[PriceKey]models.QuoteSnapshot, c.Len()),
	}
	for i := 0; i < c.Len(); i++ {
		key := PriceKey{c.QuoteDate[i], c.Expiration[i], c.Strike[i], c.OptionType[i]}
		t.quotes[key] = c.Quote(i)
	}
	t.days = c.TradingDays()
	return t
}

// Lookup returns the quote for a contract on a day.
func (t *PriceTable) Lookup(date, expiration time.Time, strike float64, ot models.OptionType) (models.QuoteSnapshot, bool) {
	q, ok := t.quotes[PriceKey{date, expiration, strike, ot}]
	return q, ok
}

// TradingDays returns the ascending unique trading days of the chain.
func (t *PriceTable) TradingDays() []time.Time {
	return t.days
}

// Len returns the number of indexed quotes.
func (t *PriceTable) Len() int {
	return len(t.quotes)
}
