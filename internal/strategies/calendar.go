package strategies

import "github.com/goldspanlabs/optopsy-mcp/internal/models"

func calendar() []models.StrategyDef {
	return []models.StrategyDef{
		relaxed("call_calendar_spread", "Calendar", "Sell near-term call, buy far-term call at same strike",
			callLeg(models.Short, 1), callLegSecondary(models.Long, 1)),
		relaxed("put_calendar_spread", "Calendar", "Sell near-term put, buy far-term put at same strike",
			putLeg(models.Short, 1), putLegSecondary(models.Long, 1)),
		strategy("call_diagonal_spread", "Calendar", "Sell near-term call, buy far-term call at different strike",
			callLeg(models.Short, 1), callLegSecondary(models.Long, 1)),
		strategy("put_diagonal_spread", "Calendar", "Sell near-term put, buy far-term put at different strike",
			putLeg(models.Short, 1), putLegSecondary(models.Long, 1)),
		relaxed("double_calendar", "Calendar", "Call calendar + put calendar at different strikes",
			callLeg(models.Short, 1), callLegSecondary(models.Long, 1),
			putLeg(models.Short, 1), putLegSecondary(models.Long, 1)),
		relaxed("double_diagonal", "Calendar", "Call diagonal + put diagonal at different strikes",
			callLeg(models.Short, 1), callLegSecondary(models.Long, 1),
			putLeg(models.Short, 1), putLegSecondary(models.Long, 1)),
	}
}
