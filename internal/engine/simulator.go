package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// SignalGate reports whether a signal is active on a given day. A nil
// gate means unconditional entries / no signal exits.
type SignalGate func(day time.Time) bool

// PositionLeg is the live state of one leg of an open position.
type PositionLeg struct {
	Side       models.Side
	OptionType models.OptionType
	Strike     float64
	Expiration time.Time
	EntryPrice float64
	Qty        int

	lastQuote models.QuoteSnapshot
}

// Position is owned by the event loop from OPEN until its CLOSE
// transition turns it into a TradeRecord.
type Position struct {
	ID                  string
	OpenDate            time.Time
	Expiration          time.Time
	SecondaryExpiration time.Time
	Legs                []PositionLeg
	EntryCost           float64
	Quantity            int

	staleDays int
}

// minExpiration returns the earliest leg expiration.
func (p *Position) minExpiration() time.Time {
	min := p.Legs[0].Expiration
	for _, l := range p.Legs[1:] {
		if l.Expiration.Before(min) {
			min = l.Expiration
		}
	}
	return min
}

// Simulator runs the day-by-day open/close state machine.
type Simulator struct {
	Table     *PriceTable
	Params    models.BacktestParams
	Def       models.StrategyDef
	EntryGate SignalGate
	ExitGate  SignalGate
	Log       zerolog.Logger
}

// Run iterates the trading days in ascending order, applying the
// OPEN, CLOSE, MARK phases. Cancellation is checked once per day; on
// cancel a partial result is returned with Cancelled set.
func (s *Simulator) Run(ctx context.Context, candidates map[time.Time][]EntryCandidate) *models.BacktestResult {
	res := &models.BacktestResult{Strategy: s.Params.Strategy}

	commission := models.Commission{}
	if s.Params.Commission != nil {
		commission = *s.Params.Commission
	}

	cash := s.Params.Capital
	realized := 0.0
	var open []*Position

	for _, today := range s.Table.TradingDays() {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		// OPEN
		pending := append([]EntryCandidate(nil), candidates[today]...)
		if s.EntryGate != nil && !s.EntryGate(today) {
			pending = nil
		}
		for len(open) < s.Params.MaxPositions && len(pending) > 0 {
			idx := s.selectCandidate(pending)
			cand := pending[idx]
			pending = append(pending[:idx], pending[idx+1:]...)

			if s.holdsExpiration(open, cand.Expiration) {
				continue
			}

			pos, cost := s.openPosition(cand, today)
			fee := commission.Calculate(s.contractCount(pos))
			if cost+fee > cash {
				res.SkippedInsufficientCapital++
				continue
			}
			cash -= cost + fee
			open = append(open, pos)
			s.Log.Debug().
				Str("position", pos.ID).
				Time("date", today).
				Float64("entry_cost", cost).
				Msg("position opened")
		}

		// CLOSE
		var stillOpen []*Position
		for _, pos := range open {
			value, stale := s.currentValue(pos, today)
			if stale {
				pos.staleDays++
			} else {
				pos.staleDays = 0
			}

			reason, triggered := s.checkExits(pos, today, value)
			if pos.staleDays > 1 {
				reason, triggered = models.ExitExpiration, true
			}
			if !triggered {
				stillOpen = append(stillOpen, pos)
				continue
			}

			fee := commission.Calculate(s.contractCount(pos))
			pnl := value - pos.EntryCost - 2*fee
			cash += value - fee
			realized += pnl

			res.TradeLog = append(res.TradeLog, s.record(pos, today, value, pnl, reason))
			s.Log.Debug().
				Str("position", pos.ID).
				Time("date", today).
				Str("reason", string(reason)).
				Float64("pnl", pnl).
				Msg("position closed")
		}
		open = stillOpen

		// MARK
		unrealized := 0.0
		for _, pos := range open {
			value, _ := s.currentValue(pos, today)
			unrealized += value - pos.EntryCost
		}
		res.EquityCurve = append(res.EquityCurve, models.EquityPoint{
			Datetime: today,
			Equity:   s.Params.Capital + realized + unrealized,
		})
	}

	res.TradeCount = len(res.TradeLog)
	for _, t := range res.TradeLog {
		res.TotalPnL += t.PnL
	}
	return res
}

// openPosition prices each leg at the configured slippage and creates
// the position. The returned cost is the signed entry cost (negative
// for net credit).
func (s *Simulator) openPosition(cand EntryCandidate, today time.Time) (*Position, float64) {
	pos := &Position{
		ID:                  uuid.NewString(),
		OpenDate:            today,
		Expiration:          cand.Expiration,
		SecondaryExpiration: cand.SecondaryExpiration,
		Quantity:            s.Params.Quantity,
		Legs:                make([]PositionLeg, len(cand.Legs)),
	}
	for i, cl := range cand.Legs {
		fill := FillPrice(cl.Bid, cl.Ask, cl.Side, s.Params.Slippage)
		qty := cl.Qty * s.Params.Quantity
		pos.Legs[i] = PositionLeg{
			Side:       cl.Side,
			OptionType: cl.OptionType,
			Strike:     cl.Strike,
			Expiration: cl.Expiration,
			EntryPrice: fill,
			Qty:        qty,
			lastQuote:  models.QuoteSnapshot{Bid: cl.Bid, Ask: cl.Ask, Delta: cl.Delta},
		}
		pos.EntryCost += fill * cl.Side.Multiplier() * float64(qty) * float64(s.Params.Multiplier)
	}
	return pos, pos.EntryCost
}

// currentValue marks the position at today's quotes, carrying forward
// the last seen quote for legs missing today. The second return is
// true when any leg quote was missing.
func (s *Simulator) currentValue(pos *Position, today time.Time) (float64, bool) {
	value := 0.0
	stale := false
	for i := range pos.Legs {
		leg := &pos.Legs[i]
		q, ok := s.Table.Lookup(today, leg.Expiration, leg.Strike, leg.OptionType)
		if ok {
			leg.lastQuote = q
		} else {
			stale = true
			q = leg.lastQuote
		}
		fill := FillPrice(q.Bid, q.Ask, leg.Side.Opposite(), s.Params.Slippage)
		value += fill * leg.Side.Multiplier() * float64(leg.Qty) * float64(s.Params.Multiplier)
	}
	return value, stale
}

// checkExits evaluates the exit conditions in fixed priority order and
// returns the first that triggers.
func (s *Simulator) checkExits(pos *Position, today time.Time, value float64) (models.ExitReason, bool) {
	pnl := value - pos.EntryCost
	entryCost := pos.EntryCost
	if entryCost < 0 {
		entryCost = -entryCost
	}

	dte := models.DTE(today, pos.minExpiration())
	if dte <= s.Params.ExitDTE {
		return models.ExitDte, true
	}
	if s.Params.StopLoss != nil && pnl < -*s.Params.StopLoss*entryCost {
		return models.ExitStopLoss, true
	}
	if s.Params.TakeProfit != nil && pnl > *s.Params.TakeProfit*entryCost {
		return models.ExitTakeProfit, true
	}
	if s.Params.MaxHoldDays != nil {
		held := models.DTE(pos.OpenDate, today)
		if held >= *s.Params.MaxHoldDays {
			return models.ExitMaxHold, true
		}
	}
	if !today.Before(pos.minExpiration()) {
		return models.ExitExpiration, true
	}
	if s.ExitGate != nil && s.ExitGate(today) {
		return models.ExitSignal, true
	}
	return "", false
}

// record turns a closed position into its trade log entry.
func (s *Simulator) record(pos *Position, today time.Time, value, pnl float64, reason models.ExitReason) models.TradeRecord {
	legs := make([]models.TradeLeg, len(pos.Legs))
	for i, l := range pos.Legs {
		legs[i] = models.TradeLeg{
			Side:       l.Side,
			OptionType: l.OptionType,
			Strike:     l.Strike,
			Expiration: l.Expiration,
			EntryPrice: l.EntryPrice,
			ClosePrice: FillPrice(l.lastQuote.Bid, l.lastQuote.Ask, l.Side.Opposite(), s.Params.Slippage),
			Qty:        l.Qty,
		}
	}
	return models.TradeRecord{
		ID:        pos.ID,
		EntryDate: pos.OpenDate,
		ExitDate:  today,
		Legs:      legs,
		Quantity:  pos.Quantity,
		EntryCost: pos.EntryCost,
		ExitCost:  value,
		PnL:       pnl,
		DaysHeld:  models.DTE(pos.OpenDate, today),
		Reason:    reason,
	}
}

func (s *Simulator) contractCount(pos *Position) int {
	n := 0
	for _, l := range pos.Legs {
		q := l.Qty
		if q < 0 {
			q = -q
		}
		n += q
	}
	return n
}

func (s *Simulator) holdsExpiration(open []*Position, exp time.Time) bool {
	for _, p := range open {
		if p.Expiration.Equal(exp) {
			return true
		}
	}
	return false
}

// selectCandidate applies the TradeSelector to the pending list and
// returns the chosen index.
func (s *Simulator) selectCandidate(pending []EntryCandidate) int {
	switch s.Params.Selector {
	case models.SelectHighestPremium:
		best := 0
		for i := 1; i < len(pending); i++ {
			if abs(pending[i].NetPremium) > abs(pending[best].NetPremium) {
				best = i
			}
		}
		return best
	case models.SelectLowestPremium:
		best := 0
		for i := 1; i < len(pending); i++ {
			if abs(pending[i].NetPremium) < abs(pending[best].NetPremium) {
				best = i
			}
		}
		return best
	case models.SelectNearest:
		idxs := make([]int, len(pending))
		for i := range idxs {
			idxs[i] = i
		}
		target := 0.0
		if len(s.Params.LegDeltas) > 0 {
			target = s.Params.LegDeltas[0].Target
		}
		sort.SliceStable(idxs, func(a, b int) bool {
			ca, cb := pending[idxs[a]], pending[idxs[b]]
			if ca.DTE != cb.DTE {
				return ca.DTE < cb.DTE
			}
			da, db := deltaDist(ca, target), deltaDist(cb, target)
			if da != db {
				return da < db
			}
			return ca.Expiration.Before(cb.Expiration)
		})
		return idxs[0]
	default: // SelectFirst
		return 0
	}
}

// deltaDist is the primary leg's |delta| distance to its target.
func deltaDist(c EntryCandidate, target float64) float64 {
	if len(c.Legs) == 0 {
		return 0
	}
	d := c.Legs[0].Delta
	if d < 0 {
		d = -d
	}
	return abs(d - target)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
