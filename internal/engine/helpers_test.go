package engine

import (
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type row struct {
	qd     time.Time
	exp    time.Time
	strike float64
	ot     models.OptionType
	bid    float64
	ask    float64
	delta  float64
}

func buildChain(rows ...row) *chain.Chain {
	c := &chain.Chain{}
	for _, r := range rows {
		c.QuoteDate = append(c.QuoteDate, r.qd)
		c.Expiration = append(c.Expiration, r.exp)
		c.Strike = append(c.Strike, r.strike)
		c.OptionType = append(c.OptionType, r.ot)
		c.Bid = append(c.Bid, r.bid)
		c.Ask = append(c.Ask, r.ask)
		c.Delta = append(c.Delta, r.delta)
		c.Symbol = append(c.Symbol, "SPY")
	}
	return c
}

func callRow(qd, exp time.Time, strike, bid, ask, delta float64) row {
	return row{qd: qd, exp: exp, strike: strike, ot: models.Call, bid: bid, ask: ask, delta: delta}
}

func putRow(qd, exp time.Time, strike, bid, ask, delta float64) row {
	return row{qd: qd, exp: exp, strike: strike, ot: models.Put, bid: bid, ask: ask, delta: delta}
}

func deltaLeg(side models.Side, ot models.OptionType, target, min, max float64) models.LegDef {
	return models.LegDef{
		Side:       side,
		OptionType: ot,
		Qty:        1,
		Delta:      models.TargetRange{Target: target, Min: min, Max: max},
	}
}
