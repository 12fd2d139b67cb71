package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

var (
	gainText = color.New(color.FgGreen).SprintFunc()
	lossText = color.New(color.FgRed).SprintFunc()
)

// formatMoney renders a dollar amount with sign coloring.
func formatMoney(v float64) string {
	s := fmt.Sprintf("$%.2f", v)
	switch {
	case v > 0:
		return gainText(s)
	case v < 0:
		return lossText(s)
	default:
		return s
	}
}

// formatRatio renders a ratio, spelling out the infinity conventions.
func formatRatio(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// parseDeltas parses per-leg delta targets from
// "target:min:max[,target:min:max...]".
func parseDeltas(s string) ([]models.TargetRange, error) {
	if s == "" {
		return nil, errors.NewValidationError("deltas", s, "at least one target:min:max triple required")
	}
	parts := strings.Split(s, ",")
	out := make([]models.TargetRange, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, errors.NewValidationError("deltas", part, "expected target:min:max")
		}
		vals := make([]float64, 3)
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, errors.NewValidationError("deltas", f, "not a number")
			}
			vals[i] = v
		}
		out = append(out, models.TargetRange{Target: vals[0], Min: vals[1], Max: vals[2]})
	}
	return out, nil
}

// parseSlippage builds the slippage model from the CLI flags.
func parseSlippage(model string, fillRatio, perLeg float64) models.Slippage {
	return models.Slippage{
		Model:     models.SlippageModel(model),
		FillRatio: fillRatio,
		PerLeg:    perLeg,
	}
}

// maxTransportPoints bounds the equity curve size handed to transports.
const maxTransportPoints = 50

// downsampleEquity thins an equity curve to at most maxTransportPoints
// points, always keeping the first and last.
func downsampleEquity(curve []models.EquityPoint) []models.EquityPoint {
	if len(curve) <= maxTransportPoints {
		return curve
	}
	out := make([]models.EquityPoint, 0, maxTransportPoints)
	step := float64(len(curve)-1) / float64(maxTransportPoints-1)
	for i := 0; i < maxTransportPoints; i++ {
		out = append(out, curve[int(float64(i)*step+0.5)])
	}
	out[len(out)-1] = curve[len(curve)-1]
	return out
}
