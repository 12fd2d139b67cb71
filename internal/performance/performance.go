// Package performance derives portfolio risk and return metrics from an
// equity curve and a trade log.
package performance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// TradingDaysPerYear is the annualization base for daily returns.
const TradingDaysPerYear = 252

// Calculate derives the full metric set. Zero-denominator conventions:
// empty means resolve to 0, positive-over-zero ratios to +Inf. The
// Degenerate annotation lists a curve too short for return metrics, a
// zero return stddev, and each ratio resolved to +Inf; means over empty
// sets and 0/0 ratios resolve to 0 without an entry.
func Calculate(curve []models.EquityPoint, trades []models.TradeRecord, capital float64) models.PerformanceMetrics {
	m := models.PerformanceMetrics{}

	tradeMetrics(&m, trades)

	if len(curve) < 2 {
		if len(curve) <= 1 {
			m.Degenerate = append(m.Degenerate, "equity curve too short for return metrics")
		}
		return m
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev != 0 {
			returns = append(returns, curve[i].Equity/prev-1)
		}
	}
	if len(returns) == 0 {
		m.Degenerate = append(m.Degenerate, "no computable daily returns")
		return m
	}

	mean := stat.Mean(returns, nil)
	std := 0.0
	if len(returns) > 1 {
		std = stat.StdDev(returns, nil)
	}
	annualize := math.Sqrt(TradingDaysPerYear)

	if std > 0 {
		m.Sharpe = mean / std * annualize
	} else {
		m.Degenerate = append(m.Degenerate, "sharpe: zero return stddev")
	}

	downside := downsideDeviation(returns)
	if downside > 0 {
		m.Sortino = mean / downside * annualize
	} else if mean > 0 {
		m.Sortino = math.Inf(1)
		m.Degenerate = append(m.Degenerate, "sortino: no downside returns")
	}

	m.MaxDrawdown = maxDrawdown(curve)
	m.VaR95 = valueAtRisk(returns, 0.05)

	start, end := curve[0].Equity, curve[len(curve)-1].Equity
	if capital > 0 {
		m.TotalReturnPct = (end - capital) / capital * 100
	}
	if start > 0 && end > 0 {
		m.CAGR = math.Pow(end/start, TradingDaysPerYear/float64(len(returns))) - 1
	}

	if m.MaxDrawdown < 0 {
		m.Calmar = m.CAGR / -m.MaxDrawdown
	} else {
		m.Calmar = math.Inf(1)
		m.Degenerate = append(m.Degenerate, "calmar: zero drawdown")
	}

	return m
}

func tradeMetrics(m *models.PerformanceMetrics, trades []models.TradeRecord) {
	if len(trades) == 0 {
		return
	}

	var winSum, lossSum, totalPnL float64
	var wins, losses, totalDays int
	streak, maxStreak := 0, 0

	for _, t := range trades {
		totalPnL += t.PnL
		totalDays += t.DaysHeld
		switch {
		case t.PnL > 0:
			wins++
			winSum += t.PnL
			streak = 0
		case t.PnL < 0:
			losses++
			lossSum += t.PnL
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		default:
			// Scratch trades break loss streaks but count toward totals.
			streak = 0
		}
	}

	n := float64(len(trades))
	m.WinRate = float64(wins) / n
	m.AvgTradePnL = totalPnL / n
	m.AvgDaysHeld = float64(totalDays) / n
	m.MaxConsecutiveLosses = maxStreak

	if wins > 0 {
		m.AvgWinner = winSum / float64(wins)
	}
	if losses > 0 {
		m.AvgLoser = lossSum / float64(losses)
	}

	switch {
	case lossSum < 0:
		m.ProfitFactor = winSum / -lossSum
	case winSum > 0:
		m.ProfitFactor = math.Inf(1)
		m.Degenerate = append(m.Degenerate, "profit_factor: no losing trades")
	}

	m.Expectancy = m.WinRate*m.AvgWinner + (1-m.WinRate)*m.AvgLoser
}

// downsideDeviation is sqrt(mean(min(r, 0)^2)) over all returns.
func downsideDeviation(returns []float64) float64 {
	sum := 0.0
	for _, r := range returns {
		if r < 0 {
			sum += r * r
		}
	}
	return math.Sqrt(sum / float64(len(returns)))
}

// maxDrawdown is min over t of E_t / max_{s<=t} E_s - 1, a value <= 0.
func maxDrawdown(curve []models.EquityPoint) float64 {
	peak := curve[0].Equity
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := p.Equity/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// valueAtRisk returns the p-quantile of daily returns (for p=0.05 the
// 5th percentile, a loss threshold exceeded 5% of days historically).
func valueAtRisk(returns []float64, p float64) float64 {
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}
