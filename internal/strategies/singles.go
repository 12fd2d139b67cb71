package strategies

import "github.com/goldspanlabs/optopsy-mcp/internal/models"

func singles() []models.StrategyDef {
	return []models.StrategyDef{
		strategy("long_call", "Singles", "Buy a call option",
			callLeg(models.Long, 1)),
		strategy("short_call", "Singles", "Sell a call option",
			callLeg(models.Short, 1)),
		strategy("long_put", "Singles", "Buy a put option",
			putLeg(models.Long, 1)),
		strategy("short_put", "Singles", "Sell a put option (cash-secured put)",
			putLeg(models.Short, 1)),
		strategy("covered_call", "Singles", "Sell a call against long stock",
			callLeg(models.Short, 1)),
		strategy("cash_secured_put", "Singles", "Sell a put with cash collateral",
			putLeg(models.Short, 1)),
	}
}
