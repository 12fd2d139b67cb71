package strategies

import "github.com/goldspanlabs/optopsy-mcp/internal/models"

func iron() []models.StrategyDef {
	return []models.StrategyDef{
		strategy("iron_condor", "Iron", "Sell OTM put spread + sell OTM call spread",
			putLeg(models.Long, 1), putLeg(models.Short, 1), callLeg(models.Short, 1), callLeg(models.Long, 1)),
		strategy("reverse_iron_condor", "Iron", "Buy OTM put spread + buy OTM call spread",
			putLeg(models.Short, 1), putLeg(models.Long, 1), callLeg(models.Long, 1), callLeg(models.Short, 1)),
		relaxed("iron_butterfly", "Iron", "Sell ATM straddle + buy OTM strangle",
			putLeg(models.Long, 1), putLeg(models.Short, 1), callLeg(models.Short, 1), callLeg(models.Long, 1)),
		relaxed("reverse_iron_butterfly", "Iron", "Buy ATM straddle + sell OTM strangle",
			putLeg(models.Short, 1), putLeg(models.Long, 1), callLeg(models.Long, 1), callLeg(models.Short, 1)),
	}
}
