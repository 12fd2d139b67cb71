package engine

import (
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// CandidateLeg is one selected contract of a multi-leg entry.
type CandidateLeg struct {
	Side       models.Side
	OptionType models.OptionType
	Strike     float64
	Expiration time.Time
	Bid        float64
	Ask        float64
	Delta      float64
	Qty        int
}

// EntryCandidate is a fully joined, strike-ordered multi-leg entry
// eligible for selection on its entry day.
type EntryCandidate struct {
	EntryDate           time.Time
	Expiration          time.Time
	SecondaryExpiration time.Time
	Legs                []CandidateLeg
	// NetPremium is the mid-priced signed premium: negative means net
	// debit paid. Display and selection only; fills use the configured
	// slippage inside the event loop.
	NetPremium float64
	// DTE at entry, per the nearest expiration.
	DTE int
}

// FindEntryCandidates runs the leg pipeline without exit matching and
// groups the joined rows by entry date. The minimum entry DTE is
// exitDTE+1 so a fresh position cannot exit through the DTE rule on its
// own open day.
func FindEntryCandidates(c *chain.Chain, def models.StrategyDef, p models.BacktestParams) map[time.Time][]EntryCandidate {
	legRows := make([][]MatchedLeg, len(def.Legs))
	for i, leg := range def.Legs {
		if i < len(p.LegDeltas) {
			leg.Delta = p.LegDeltas[i]
		}
		maxDTE := p.MaxEntryDTE
		if leg.Cycle == models.CycleSecondary {
			maxDTE = p.MaxEntryDTE * 2
		}
		rows := FilterLeg(c, leg, maxDTE, p.ExitDTE+1)
		if len(rows) == 0 {
			return nil
		}
		matched := make([]MatchedLeg, len(rows))
		for j, r := range rows {
			matched[j] = MatchedLeg{Entry: r, Exit: -1}
		}
		legRows[i] = matched
	}

	joined := JoinLegs(c, def, legRows)
	if len(joined) == 0 {
		return nil
	}

	out := make(map[time.Time][]EntryCandidate)
	for _, row := range joined {
		cand := EntryCandidate{
			EntryDate:           row.QuoteDate,
			Expiration:          row.Expiration,
			SecondaryExpiration: row.SecondaryExpiration,
			Legs:                make([]CandidateLeg, len(row.Legs)),
			DTE:                 models.DTE(row.QuoteDate, row.Expiration),
		}
		for i, m := range row.Legs {
			legDef := def.Legs[i]
			e := m.Entry
			cand.Legs[i] = CandidateLeg{
				Side:       legDef.Side,
				OptionType: c.OptionType[e],
				Strike:     c.Strike[e],
				Expiration: c.Expiration[e],
				Bid:        c.Bid[e],
				Ask:        c.Ask[e],
				Delta:      c.Delta[e],
				Qty:        legDef.Qty,
			}
			mid := (c.Bid[e] + c.Ask[e]) / 2
			cand.NetPremium += mid * legDef.Side.Multiplier() * float64(legDef.Qty) * float64(p.Multiplier)
		}
		out[row.QuoteDate] = append(out[row.QuoteDate], cand)
	}
	return out
}
