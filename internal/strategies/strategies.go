// Package strategies holds the prebuilt strategy catalogue. Definitions
// are plain data; the engine is parametric over any StrategyDef.
package strategies

import (
	"strings"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func leg(side models.Side, ot models.OptionType, qty int) models.LegDef {
	return models.LegDef{
		Side:       side,
		OptionType: ot,
		Qty:        qty,
		Cycle:      models.CyclePrimary,
		Delta:      models.TargetRange{Target: 0, Min: 0, Max: 1},
	}
}

func legSecondary(side models.Side, ot models.OptionType, qty int) models.LegDef {
	l := leg(side, ot, qty)
	l.Cycle = models.CycleSecondary
	return l
}

func callLeg(side models.Side, qty int) models.LegDef {
	return leg(side, models.Call, qty)
}

func putLeg(side models.Side, qty int) models.LegDef {
	return leg(side, models.Put, qty)
}

func callLegSecondary(side models.Side, qty int) models.LegDef {
	return legSecondary(side, models.Call, qty)
}

func putLegSecondary(side models.Side, qty int) models.LegDef {
	return legSecondary(side, models.Put, qty)
}

func strategy(name, category, description string, legs ...models.LegDef) models.StrategyDef {
	return models.StrategyDef{
		Name:        name,
		Category:    category,
		Description: description,
		Legs:        legs,
		Ordering:    models.OrderAscending,
	}
}

// relaxed builds a strategy whose legs may share a strike
// (straddles, iron butterflies, calendar spreads).
func relaxed(name, category, description string, legs ...models.LegDef) models.StrategyDef {
	s := strategy(name, category, description, legs...)
	s.Ordering = models.OrderNone
	return s
}

// All returns the full catalogue.
func All() []models.StrategyDef {
	var out []models.StrategyDef
	out = append(out, singles()...)
	out = append(out, spreads()...)
	out = append(out, butterflies()...)
	out = append(out, condors()...)
	out = append(out, iron()...)
	out = append(out, calendar()...)
	return out
}

// Find looks up a strategy by name, case-insensitively.
// Lookup is linear; the catalogue is small and fixed.
func Find(name string) (models.StrategyDef, bool) {
	for _, s := range All() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return models.StrategyDef{}, false
}
