package engine

import (
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// FillPrice maps a bid/ask quote to the fill price used for accounting
// under the configured slippage model. The side is the side of the
// order being placed (pass the opposite side when closing).
func FillPrice(bid, ask float64, side models.Side, slip models.Slippage) float64 {
	mid := (bid + ask) / 2
	halfSpread := (ask - bid) / 2

	switch slip.Model {
	case models.SlippageSpread:
		if side == models.Long {
			return ask
		}
		return bid
	case models.SlippageLiquidity:
		if side == models.Long {
			return mid + slip.FillRatio*halfSpread
		}
		return mid - slip.FillRatio*halfSpread
	case models.SlippagePerLeg:
		if side == models.Long {
			return mid + slip.PerLeg
		}
		return mid - slip.PerLeg
	default:
		return mid
	}
}

// LegPnL prices one leg at entry and at exit and returns its P&L:
// (exit_fill - entry_fill) * side * qty * multiplier. The exit fill is
// priced with the opposite side, since closing reverses the order.
func LegPnL(entryBid, entryAsk, exitBid, exitAsk float64, side models.Side, slip models.Slippage, qty, multiplier int) float64 {
	entryFill := FillPrice(entryBid, entryAsk, side, slip)
	exitFill := FillPrice(exitBid, exitAsk, side.Opposite(), slip)
	return (exitFill - entryFill) * side.Multiplier() * float64(qty) * float64(multiplier)
}
