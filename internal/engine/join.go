package engine

import (
	"sort"
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// JoinedRow is one multi-leg combination sharing a quote date. Legs are
// in strategy definition order. SecondaryExpiration is zero for
// single-expiration strategies.
type JoinedRow struct {
	QuoteDate           time.Time
	Expiration          time.Time
	SecondaryExpiration time.Time
	Legs                []MatchedLeg
}

// JoinLegs inner-joins the per-leg frames. Single-expiration strategies
// join on (quote date, expiration). Multi-expiration strategies join
// primary and secondary cycles separately, then cross on quote date
// keeping only combinations where the secondary expiration is later
// than the primary. Ascending strike ordering is enforced afterwards.
func JoinLegs(c *chain.Chain, def models.StrategyDef, legRows [][]MatchedLeg) []JoinedRow {
	var joined []JoinedRow
	if def.IsMultiExpiration() {
		joined = joinMultiExpiration(c, def, legRows)
	} else {
		joined = joinSingleExpiration(c, def, legRows)
	}
	if def.Ordering == models.OrderAscending {
		joined = filterStrikeOrder(c, joined)
	}
	return joined
}

func joinSingleExpiration(c *chain.Chain, def models.StrategyDef, legRows [][]MatchedLeg) []JoinedRow {
	maps := make([]map[groupKey]MatchedLeg, len(legRows))
	for i, rows := range legRows {
		maps[i] = make(map[groupKey]MatchedLeg, len(rows))
		for _, m := range rows {
			maps[i][groupKey{c.QuoteDate[m.Entry], c.Expiration[m.Entry]}] = m
		}
	}

	var out []JoinedRow
	for _, first := range legRows[0] {
		key := groupKey{c.QuoteDate[first.Entry], c.Expiration[first.Entry]}
		legs := make([]MatchedLeg, len(legRows))
		legs[0] = first
		complete := true
		for i := 1; i < len(legRows); i++ {
			m, ok := maps[i][key]
			if !ok {
				complete = false
				break
			}
			legs[i] = m
		}
		if complete {
			out = append(out, JoinedRow{
				QuoteDate:  key.quoteDate,
				Expiration: key.expiration,
				Legs:       legs,
			})
		}
	}
	return out
}

func joinMultiExpiration(c *chain.Chain, def models.StrategyDef, legRows [][]MatchedLeg) []JoinedRow {
	maps := make([]map[groupKey]MatchedLeg, len(legRows))
	dates := make(map[time.Time]struct{})
	for i, rows := range legRows {
		maps[i] = make(map[groupKey]MatchedLeg, len(rows))
		for _, m := range rows {
			maps[i][groupKey{c.QuoteDate[m.Entry], c.Expiration[m.Entry]}] = m
			dates[c.QuoteDate[m.Entry]] = struct{}{}
		}
	}

	sortedDates := make([]time.Time, 0, len(dates))
	for d := range dates {
		sortedDates = append(sortedDates, d)
	}
	sort.Slice(sortedDates, func(i, j int) bool { return sortedDates[i].Before(sortedDates[j]) })

	var out []JoinedRow
	for _, day := range sortedDates {
		primExps := cycleExpirations(c, def, maps, day, models.CyclePrimary)
		secExps := cycleExpirations(c, def, maps, day, models.CycleSecondary)

		for _, pe := range primExps {
			for _, se := range secExps {
				if !se.After(pe) {
					continue
				}
				legs := make([]MatchedLeg, len(def.Legs))
				for i, l := range def.Legs {
					exp := pe
					if l.Cycle == models.CycleSecondary {
						exp = se
					}
					legs[i] = maps[i][groupKey{day, exp}]
				}
				out = append(out, JoinedRow{
					QuoteDate:           day,
					Expiration:          pe,
					SecondaryExpiration: se,
					Legs:                legs,
				})
			}
		}
	}
	return out
}

// cycleExpirations returns the expirations on a given day for which
// every leg of the cycle has a selected row, ascending.
func cycleExpirations(c *chain.Chain, def models.StrategyDef, maps []map[groupKey]MatchedLeg, day time.Time, cycle models.ExpirationCycle) []time.Time {
	candidates := make(map[time.Time]bool)
	first := true
	for i, l := range def.Legs {
		if l.Cycle != cycle {
			continue
		}
		present := make(map[time.Time]bool)
		for key := range maps[i] {
			if key.quoteDate.Equal(day) {
				present[key.expiration] = true
			}
		}
		if first {
			candidates = present
			first = false
			continue
		}
		for exp := range candidates {
			if !present[exp] {
				delete(candidates, exp)
			}
		}
	}

	out := make([]time.Time, 0, len(candidates))
	for exp := range candidates {
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// filterStrikeOrder keeps rows whose entry strikes strictly increase
// across legs.
func filterStrikeOrder(c *chain.Chain, rows []JoinedRow) []JoinedRow {
	out := rows[:0]
	for _, r := range rows {
		ok := true
		for i := 1; i < len(r.Legs); i++ {
			if c.Strike[r.Legs[i].Entry] <= c.Strike[r.Legs[i-1].Entry] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}
