// Package chain holds the canonical options-chain table and the
// normalisation step that produces it from raw vendor tables.
package chain

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// ColQuoteDatetime is the canonical timestamp column name.
const ColQuoteDatetime = "quote_datetime"

// timestampAliases are the vendor spellings accepted for the quote
// timestamp column, in detection order.
var timestampAliases = []string{ColQuoteDatetime, "quote_date", "data_date"}

// requiredNumeric are the numeric columns a chain must carry.
var requiredNumeric = []string{"strike", "bid", "ask", "delta"}

// RawTable is an untyped column-oriented table as read from disk.
// Cells are strings; Normalize rewrites headers and timestamp cells
// into canonical form and Build parses it into a typed Chain.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

func (t RawTable) column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Normalize unifies the raw table to the canonical schema: exactly one
// quote_datetime column holding ISO dates at day precision. It is
// idempotent: Normalize(Normalize(t)) equals Normalize(t).
func Normalize(t RawTable) (RawTable, error) {
	src := -1
	for _, alias := range timestampAliases {
		if i := t.column(alias); i >= 0 {
			src = i
			break
		}
	}
	if src < 0 {
		return RawTable{}, errors.NewSchemaError(ColQuoteDatetime, "no recognised timestamp column", nil)
	}
	if t.column("expiration") < 0 {
		return RawTable{}, errors.NewSchemaError("expiration", "missing required column", nil)
	}
	for _, name := range requiredNumeric {
		if t.column(name) < 0 {
			return RawTable{}, errors.NewSchemaError(name, "missing required column", nil)
		}
	}
	if t.column("option_type") < 0 {
		return RawTable{}, errors.NewSchemaError("option_type", "missing required column", nil)
	}

	out := RawTable{
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([][]string, len(t.Rows)),
	}
	out.Headers[src] = ColQuoteDatetime

	exp := t.column("expiration")
	for r, row := range t.Rows {
		cells := append([]string(nil), row...)
		day, err := ParseDay(cells[src])
		if err != nil {
			return RawTable{}, errors.NewSchemaError(ColQuoteDatetime, "unparseable timestamp "+cells[src], err)
		}
		cells[src] = day.Format("2006-01-02")
		expDay, err := ParseDay(cells[exp])
		if err != nil {
			return RawTable{}, errors.NewSchemaError("expiration", "unparseable date "+cells[exp], err)
		}
		cells[exp] = expDay.Format("2006-01-02")
		out.Rows[r] = cells
	}
	return out, nil
}

// ParseDay parses an ISO-8601 date or datetime string at day precision.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Day(t), nil
		}
	}
	return time.Time{}, errors.NewSchemaError("", "not an ISO-8601 date: "+s, nil)
}

// Chain is the immutable canonical options table. Columns are parallel
// slices indexed by row; timestamps are at day precision.
type Chain struct {
	QuoteDate  []time.Time
	Expiration []time.Time
	Strike     []float64
	OptionType []models.OptionType
	Bid        []float64
	Ask        []float64
	Delta      []float64
	Symbol     []string
}

// Len returns the number of rows.
func (c *Chain) Len() int {
	return len(c.QuoteDate)
}

// Columns lists the canonical column names.
func (c *Chain) Columns() []string {
	return []string{ColQuoteDatetime, "expiration", "strike", "option_type", "bid", "ask", "delta", "symbol"}
}

// Quote returns the quote snapshot at row i.
func (c *Chain) Quote(i int) models.QuoteSnapshot {
	return models.QuoteSnapshot{Bid: c.Bid[i], Ask: c.Ask[i], Delta: c.Delta[i]}
}

// DTE returns whole days to expiration at row i.
func (c *Chain) DTE(i int) int {
	return models.DTE(c.QuoteDate[i], c.Expiration[i])
}

// Summary describes the chain for reporting.
func (c *Chain) Summary(symbol string) models.ChainSummary {
	s := models.ChainSummary{Symbol: symbol, Rows: c.Len(), Columns: c.Columns()}
	for i := 0; i < c.Len(); i++ {
		d := c.QuoteDate[i]
		if s.Start.IsZero() || d.Before(s.Start) {
			s.Start = d
		}
		if d.After(s.End) {
			s.End = d
		}
	}
	return s
}

// TradingDays returns the distinct quote dates in ascending order.
func (c *Chain) TradingDays() []time.Time {
	seen := make(map[time.Time]struct{}, 64)
	for _, d := range c.QuoteDate {
		seen[d] = struct{}{}
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Build parses a normalized table into a typed Chain. Rows with an
// unrecognised option type are dropped; unparseable numerics are a
// SchemaError.
func Build(t RawTable) (*Chain, error) {
	norm, err := Normalize(t)
	if err != nil {
		return nil, err
	}

	qd := norm.column(ColQuoteDatetime)
	exp := norm.column("expiration")
	strike := norm.column("strike")
	otype := norm.column("option_type")
	bid := norm.column("bid")
	ask := norm.column("ask")
	delta := norm.column("delta")
	symbol := norm.column("symbol")

	c := &Chain{
		QuoteDate:  make([]time.Time, 0, len(norm.Rows)),
		Expiration: make([]time.Time, 0, len(norm.Rows)),
		Strike:     make([]float64, 0, len(norm.Rows)),
		OptionType: make([]models.OptionType, 0, len(norm.Rows)),
		Bid:        make([]float64, 0, len(norm.Rows)),
		Ask:        make([]float64, 0, len(norm.Rows)),
		Delta:      make([]float64, 0, len(norm.Rows)),
		Symbol:     make([]string, 0, len(norm.Rows)),
	}

	for _, row := range norm.Rows {
		ot, ok := models.ParseOptionType(row[otype])
		if !ok {
			continue
		}
		q, _ := ParseDay(row[qd])
		e, _ := ParseDay(row[exp])

		fs := make([]float64, 4)
		for i, col := range []int{strike, bid, ask, delta} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return nil, errors.NewSchemaError(requiredNumeric[i], "unparseable numeric "+row[col], err)
			}
			fs[i] = v
		}

		sym := ""
		if symbol >= 0 {
			sym = row[symbol]
		}

		c.QuoteDate = append(c.QuoteDate, q)
		c.Expiration = append(c.Expiration, e)
		c.Strike = append(c.Strike, fs[0])
		c.OptionType = append(c.OptionType, ot)
		c.Bid = append(c.Bid, fs[1])
		c.Ask = append(c.Ask, fs[2])
		c.Delta = append(c.Delta, fs[3])
		c.Symbol = append(c.Symbol, sym)
	}

	return c, nil
}
