// Package engine implements the analytical core: per-leg filtering,
// entry/exit matching, leg joining, pricing, bucketed statistics and
// the event-driven position simulator.
package engine

import (
	"sort"
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

type groupKey struct {
	quoteDate  time.Time
	expiration time.Time
}

// FilterLeg runs the per-leg selection pipeline and returns the row
// indices that survive, sorted by (quote date, expiration). Per
// (quote date, expiration) group at most one row survives: the one
// whose |delta| lies in [leg.Delta.Min, leg.Delta.Max] and is closest
// to leg.Delta.Target, ties broken by lower strike.
func FilterLeg(c *chain.Chain, leg models.LegDef, maxEntryDTE, exitDTE int) []int {
	type pick struct {
		row  int
		dist float64
	}
	best := make(map[groupKey]pick)

	for i := 0; i < c.Len(); i++ {
		if c.OptionType[i] != leg.OptionType {
			continue
		}
		dte := c.DTE(i)
		if dte < exitDTE || dte > maxEntryDTE {
			continue
		}
		if c.Bid[i] <= 0 || c.Ask[i] <= 0 {
			continue
		}
		absDelta := c.Delta[i]
		if absDelta < 0 {
			absDelta = -absDelta
		}
		if absDelta < leg.Delta.Min || absDelta > leg.Delta.Max {
			continue
		}
		dist := absDelta - leg.Delta.Target
		if dist < 0 {
			dist = -dist
		}

		key := groupKey{c.QuoteDate[i], c.Expiration[i]}
		cur, ok := best[key]
		if !ok || dist < cur.dist ||
			(dist == cur.dist && c.Strike[i] < c.Strike[cur.row]) {
			best[key] = pick{row: i, dist: dist}
		}
	}

	rows := make([]int, 0, len(best))
	for _, p := range best {
		rows = append(rows, p.row)
	}
	sort.Slice(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		if !c.QuoteDate[ra].Equal(c.QuoteDate[rb]) {
			return c.QuoteDate[ra].Before(c.QuoteDate[rb])
		}
		return c.Expiration[ra].Before(c.Expiration[rb])
	})
	return rows
}
