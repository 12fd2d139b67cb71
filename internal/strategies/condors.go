package strategies

import "github.com/goldspanlabs/optopsy-mcp/internal/models"

func condors() []models.StrategyDef {
	return []models.StrategyDef{
		strategy("long_call_condor", "Condors", "Buy 1 lowest call, sell 1 lower-mid call, sell 1 upper-mid call, buy 1 highest call",
			callLeg(models.Long, 1), callLeg(models.Short, 1), callLeg(models.Short, 1), callLeg(models.Long, 1)),
		strategy("short_call_condor", "Condors", "Sell 1 lowest call, buy 1 lower-mid call, buy 1 upper-mid call, sell 1 highest call",
			callLeg(models.Short, 1), callLeg(models.Long, 1), callLeg(models.Long, 1), callLeg(models.Short, 1)),
		strategy("long_put_condor", "Condors", "Buy 1 lowest put, sell 1 lower-mid put, sell 1 upper-mid put, buy 1 highest put",
			putLeg(models.Long, 1), putLeg(models.Short, 1), putLeg(models.Short, 1), putLeg(models.Long, 1)),
		strategy("short_put_condor", "Condors", "Sell 1 lowest put, buy 1 lower-mid put, buy 1 upper-mid put, sell 1 highest put",
			putLeg(models.Short, 1), putLeg(models.Long, 1), putLeg(models.Long, 1), putLeg(models.Short, 1)),
	}
}
