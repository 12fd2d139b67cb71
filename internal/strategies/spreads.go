package strategies

import "github.com/goldspanlabs/optopsy-mcp/internal/models"

func spreads() []models.StrategyDef {
	return []models.StrategyDef{
		strategy("bull_call_spread", "Spreads", "Buy lower strike call, sell higher strike call",
			callLeg(models.Long, 1), callLeg(models.Short, 1)),
		strategy("bear_call_spread", "Spreads", "Sell lower strike call, buy higher strike call",
			callLeg(models.Short, 1), callLeg(models.Long, 1)),
		strategy("bull_put_spread", "Spreads", "Sell higher strike put, buy lower strike put",
			putLeg(models.Long, 1), putLeg(models.Short, 1)),
		strategy("bear_put_spread", "Spreads", "Buy higher strike put, sell lower strike put",
			putLeg(models.Short, 1), putLeg(models.Long, 1)),
		relaxed("long_straddle", "Spreads", "Buy ATM call and put at same strike",
			callLeg(models.Long, 1), putLeg(models.Long, 1)),
		relaxed("short_straddle", "Spreads", "Sell ATM call and put at same strike",
			callLeg(models.Short, 1), putLeg(models.Short, 1)),
		strategy("long_strangle", "Spreads", "Buy OTM call and OTM put",
			putLeg(models.Long, 1), callLeg(models.Long, 1)),
		strategy("short_strangle", "Spreads", "Sell OTM call and OTM put",
			putLeg(models.Short, 1), callLeg(models.Short, 1)),
	}
}
