package performance

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func curve(values ...float64) []models.EquityPoint {
	out := make([]models.EquityPoint, len(values))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		out[i] = models.EquityPoint{Datetime: base.AddDate(0, 0, i), Equity: v}
	}
	return out
}

func trade(pnl float64, daysHeld int) models.TradeRecord {
	return models.TradeRecord{PnL: pnl, DaysHeld: daysHeld}
}

func TestSinglePointCurveReturnsZeros(t *testing.T) {
	m := Calculate(curve(10000), nil, 10000)
	assert.Zero(t, m.Sharpe)
	assert.Zero(t, m.MaxDrawdown)
	assert.NotEmpty(t, m.Degenerate)
}

func TestFlatCurveConventions(t *testing.T) {
	m := Calculate(curve(10000, 10000, 10000, 10000), nil, 10000)
	assert.Zero(t, m.Sharpe, "zero stddev resolves to 0")
	assert.Zero(t, m.MaxDrawdown)
	assert.True(t, math.IsInf(m.Calmar, 1), "zero drawdown resolves to +Inf")
	assert.Contains(t, m.Degenerate, "calmar: zero drawdown")
}

func TestMaxDrawdownIsNegative(t *testing.T) {
	// Peak 10200, trough 9800.
	m := Calculate(curve(10000, 10200, 9800, 10100), nil, 10000)
	expected := 9800.0/10200.0 - 1
	assert.InDelta(t, expected, m.MaxDrawdown, 1e-12)
	assert.True(t, m.MaxDrawdown < 0)
}

func TestSharpeKnownSeries(t *testing.T) {
	// Returns: +1%, -1%, +1%, -1% around zero mean.
	m := Calculate(curve(10000, 10100, 9999, 10098.99, 9998), nil, 10000)
	assert.False(t, math.IsInf(m.Sharpe, 0))
	assert.True(t, m.Sharpe < 1 && m.Sharpe > -1, "near-zero mean yields small Sharpe, got %f", m.Sharpe)
}

func TestSortinoAllGainsIsInf(t *testing.T) {
	m := Calculate(curve(10000, 10100, 10200, 10300), nil, 10000)
	assert.True(t, math.IsInf(m.Sortino, 1))
	assert.Contains(t, m.Degenerate, "sortino: no downside returns")
}

func TestCAGRMatchesClosedForm(t *testing.T) {
	c := curve(10000, 10100, 10200, 10300, 10400)
	m := Calculate(c, nil, 10000)
	n := float64(len(c) - 1)
	expected := math.Pow(10400.0/10000.0, TradingDaysPerYear/n) - 1
	assert.InDelta(t, expected, m.CAGR, 1e-12)
	assert.InDelta(t, 4.0, m.TotalReturnPct, 1e-10)
}

func TestVaR95IsLowQuantile(t *testing.T) {
	// Mostly small gains with a couple of large losses.
	values := []float64{10000}
	last := 10000.0
	deltas := []float64{50, 60, -400, 40, 55, 45, -350, 60, 50, 40, 45, 55, 50, 60, 45, 40, 55, 50, 60, 45}
	for _, d := range deltas {
		last += d
		values = append(values, last)
	}
	m := Calculate(curve(values...), nil, 10000)
	assert.True(t, m.VaR95 < 0, "5th percentile daily return is a loss, got %f", m.VaR95)
}

func TestTradeMetrics(t *testing.T) {
	trades := []models.TradeRecord{
		trade(200, 5), trade(-100, 3), trade(150, 7), trade(-50, 2),
	}
	m := Calculate(curve(10000, 10200), trades, 10000)

	assert.InDelta(t, 0.5, m.WinRate, 1e-12)
	assert.InDelta(t, 175.0, m.AvgWinner, 1e-12)
	assert.InDelta(t, -75.0, m.AvgLoser, 1e-12)
	assert.InDelta(t, 50.0, m.Expectancy, 1e-12, "0.5*175 + 0.5*(-75)")
	assert.InDelta(t, 4.25, m.AvgDaysHeld, 1e-12)
	assert.InDelta(t, 350.0/150.0, m.ProfitFactor, 1e-12)
}

func TestMaxConsecutiveLosses(t *testing.T) {
	trades := []models.TradeRecord{
		trade(100, 1), trade(-50, 1), trade(-30, 1), trade(-20, 1), trade(80, 1), trade(-10, 1),
	}
	m := Calculate(curve(10000, 10100), trades, 10000)
	assert.Equal(t, 3, m.MaxConsecutiveLosses)
}

func TestScratchTradesBreakStreaks(t *testing.T) {
	trades := []models.TradeRecord{
		trade(-50, 1), trade(0, 1), trade(-30, 1),
	}
	m := Calculate(curve(10000, 9920), trades, 10000)
	assert.Equal(t, 1, m.MaxConsecutiveLosses)
	assert.Zero(t, m.WinRate)
	assert.InDelta(t, -40.0, m.AvgLoser, 1e-12)
}

func TestProfitFactorConventions(t *testing.T) {
	m := Calculate(curve(10000, 10300), []models.TradeRecord{trade(100, 1), trade(200, 1)}, 10000)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))

	m = Calculate(curve(10000, 9700), []models.TradeRecord{trade(-100, 1)}, 10000)
	assert.Zero(t, m.ProfitFactor)
}

// Ratio metrics are invariant to a positive rescaling of capital and
// P&L; absolute metrics scale.
func TestMetricsScaleInvarianceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sharpe, win rate and profit factor are scale-invariant", prop.ForAll(
		func(scale float64, deltas []float64) bool {
			if len(deltas) < 3 {
				return true
			}
			capital := 10000.0
			base := []float64{capital}
			last := capital
			for _, d := range deltas {
				last += d
				if last <= 0 {
					return true
				}
				base = append(base, last)
			}
			scaled := make([]float64, len(base))
			for i, v := range base {
				scaled[i] = v * scale
			}

			trades := []models.TradeRecord{trade(deltas[0], 1), trade(deltas[1], 2)}
			scaledTrades := []models.TradeRecord{trade(deltas[0] * scale, 1), trade(deltas[1] * scale, 2)}

			m1 := Calculate(curve(base...), trades, capital)
			m2 := Calculate(curve(scaled...), scaledTrades, capital*scale)

			return approxEqual(m1.Sharpe, m2.Sharpe) &&
				approxEqual(m1.WinRate, m2.WinRate) &&
				approxEqual(m1.ProfitFactor, m2.ProfitFactor) &&
				approxEqual(m1.MaxDrawdown, m2.MaxDrawdown)
		},
		gen.Float64Range(0.1, 100),
		gen.SliceOfN(8, gen.Float64Range(-500, 500)),
	))

	properties.TestingRun(t)
}

func approxEqual(a, b float64) bool {
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return true
	}
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= 1e-6*math.Max(scale, 1)
}

func TestCalculateEmptyEverything(t *testing.T) {
	m := Calculate(nil, nil, 10000)
	require.Zero(t, m.Sharpe)
	require.Zero(t, m.WinRate)
}
