package strategies

import "github.com/goldspanlabs/optopsy-mcp/internal/models"

func butterflies() []models.StrategyDef {
	return []models.StrategyDef{
		strategy("long_call_butterfly", "Butterflies", "Buy 1 lower call, sell 2 middle calls, buy 1 upper call",
			callLeg(models.Long, 1), callLeg(models.Short, 2), callLeg(models.Long, 1)),
		strategy("short_call_butterfly", "Butterflies", "Sell 1 lower call, buy 2 middle calls, sell 1 upper call",
			callLeg(models.Short, 1), callLeg(models.Long, 2), callLeg(models.Short, 1)),
		strategy("long_put_butterfly", "Butterflies", "Buy 1 lower put, sell 2 middle puts, buy 1 upper put",
			putLeg(models.Long, 1), putLeg(models.Short, 2), putLeg(models.Long, 1)),
		strategy("short_put_butterfly", "Butterflies", "Sell 1 lower put, buy 2 middle puts, sell 1 upper put",
			putLeg(models.Short, 1), putLeg(models.Long, 2), putLeg(models.Short, 1)),
	}
}
