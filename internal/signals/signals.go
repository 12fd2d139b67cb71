package signals

import (
	"encoding/json"
	"math"
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// Spec is a serializable signal specification. Type selects the rule;
// the remaining fields are its parameters. And/Or nest sub-specs.
type Spec struct {
	Type string `json:"type"`

	Period     int     `json:"period,omitempty"`
	FastPeriod int     `json:"fast_period,omitempty"`
	SlowPeriod int     `json:"slow_period,omitempty"`
	Count      int     `json:"count,omitempty"`
	Threshold  float64 `json:"threshold,omitempty"`

	Specs []Spec `json:"specs,omitempty"`
}

// Signal type tags.
const (
	RsiOversold         = "rsi_oversold"
	RsiOverbought       = "rsi_overbought"
	PriceAboveSma       = "price_above_sma"
	PriceBelowSma       = "price_below_sma"
	PriceAboveEma       = "price_above_ema"
	PriceBelowEma       = "price_below_ema"
	SmaCrossover        = "sma_crossover"
	SmaCrossunder       = "sma_crossunder"
	EmaCrossover        = "ema_crossover"
	EmaCrossunder       = "ema_crossunder"
	ConsecutiveUp       = "consecutive_up"
	ConsecutiveDown     = "consecutive_down"
	GapUp               = "gap_up"
	GapDown             = "gap_down"
	RateOfChange        = "rate_of_change"
	AtrAbove            = "atr_above"
	AtrBelow            = "atr_below"
	BollingerLowerTouch = "bollinger_lower_touch"
	BollingerUpperTouch = "bollinger_upper_touch"
	And                 = "and"
	Or                  = "or"
)

// Evaluate returns the per-bar activation series of a signal over the
// candles. Signals are pure functions of past OHLCV.
func Evaluate(spec Spec, candles []models.Candle) ([]bool, error) {
	n := len(candles)
	closes := make([]float64, n)
	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		opens[i] = c.Open
		highs[i] = c.High
		lows[i] = c.Low
	}

	switch spec.Type {
	case RsiOversold:
		return threshold(rsi(closes, defaulted(spec.Period, 14)), spec.Threshold, below), nil
	case RsiOverbought:
		return threshold(rsi(closes, defaulted(spec.Period, 14)), spec.Threshold, above), nil
	case PriceAboveSma:
		return seriesAbove(closes, sma(closes, spec.Period)), nil
	case PriceBelowSma:
		return seriesAbove(sma(closes, spec.Period), closes), nil
	case PriceAboveEma:
		return seriesAbove(closes, ema(closes, spec.Period)), nil
	case PriceBelowEma:
		return seriesAbove(ema(closes, spec.Period), closes), nil
	case SmaCrossover:
		return crossover(sma(closes, spec.FastPeriod), sma(closes, spec.SlowPeriod)), nil
	case SmaCrossunder:
		return crossover(sma(closes, spec.SlowPeriod), sma(closes, spec.FastPeriod)), nil
	case EmaCrossover:
		return crossover(ema(closes, spec.FastPeriod), ema(closes, spec.SlowPeriod)), nil
	case EmaCrossunder:
		return crossover(ema(closes, spec.SlowPeriod), ema(closes, spec.FastPeriod)), nil
	case ConsecutiveUp:
		return consecutive(closes, spec.Count, above), nil
	case ConsecutiveDown:
		return consecutive(closes, spec.Count, below), nil
	case GapUp:
		return gaps(opens, closes, spec.Threshold, above), nil
	case GapDown:
		return gaps(opens, closes, spec.Threshold, below), nil
	case RateOfChange:
		return threshold(roc(closes, defaulted(spec.Period, 10)), spec.Threshold, above), nil
	case AtrAbove:
		return threshold(atr(highs, lows, closes, defaulted(spec.Period, 14)), spec.Threshold, above), nil
	case AtrBelow:
		return threshold(atr(highs, lows, closes, defaulted(spec.Period, 14)), spec.Threshold, below), nil
	case BollingerLowerTouch:
		_, _, lower := bollinger(closes, defaulted(spec.Period, 20))
		return seriesAbove(lower, closes), nil
	case BollingerUpperTouch:
		_, upper, _ := bollinger(closes, defaulted(spec.Period, 20))
		return seriesAbove(closes, upper), nil
	case And, Or:
		return combine(spec, candles)
	}
	return nil, errors.NewValidationError("signal.type", spec.Type, "unknown signal type")
}

// ActiveDates evaluates the spec and returns the set of dates where it
// is active.
func ActiveDates(spec Spec, candles []models.Candle) (map[time.Time]bool, error) {
	active, err := Evaluate(spec, candles)
	if err != nil {
		return nil, err
	}
	out := make(map[time.Time]bool)
	for i, on := range active {
		if on {
			out[models.Day(candles[i].Date)] = true
		}
	}
	return out, nil
}

// Gate adapts an active-date set to the engine's signal capability.
func Gate(dates map[time.Time]bool) func(day time.Time) bool {
	return func(day time.Time) bool {
		return dates[models.Day(day)]
	}
}

func combine(spec Spec, candles []models.Candle) ([]bool, error) {
	if len(spec.Specs) == 0 {
		return nil, errors.NewValidationError("signal.specs", 0, "combinator requires sub-signals")
	}
	out := make([]bool, len(candles))
	for i, sub := range spec.Specs {
		series, err := Evaluate(sub, candles)
		if err != nil {
			return nil, err
		}
		for j := range out {
			if i == 0 {
				out[j] = series[j]
			} else if spec.Type == And {
				out[j] = out[j] && series[j]
			} else {
				out[j] = out[j] || series[j]
			}
		}
	}
	return out, nil
}

type direction int

const (
	above direction = iota
	below
)

func cmp(a, b float64, d direction) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if d == above {
		return a > b
	}
	return a < b
}

func threshold(series []float64, level float64, d direction) []bool {
	out := make([]bool, len(series))
	for i, v := range series {
		out[i] = cmp(v, level, d)
	}
	return out
}

func seriesAbove(a, b []float64) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = cmp(a[i], b[i], above)
	}
	return out
}

// crossover is true on bars where fast moves from at-or-below slow to
// strictly above.
func crossover(fast, slow []float64) []bool {
	out := make([]bool, len(fast))
	for i := 1; i < len(fast); i++ {
		out[i] = cmp(fast[i], slow[i], above) && !cmp(fast[i-1], slow[i-1], above) &&
			!math.IsNaN(fast[i-1]) && !math.IsNaN(slow[i-1])
	}
	return out
}

// consecutive is true after count successive moves in the direction.
func consecutive(values []float64, count int, d direction) []bool {
	out := make([]bool, len(values))
	if count <= 0 {
		return out
	}
	run := 0
	for i := 1; i < len(values); i++ {
		if cmp(values[i], values[i-1], d) {
			run++
		} else {
			run = 0
		}
		out[i] = run >= count
	}
	return out
}

// gaps flags bars whose open gaps beyond threshold (a fraction) from
// the prior close.
func gaps(opens, closes []float64, thresholdFrac float64, d direction) []bool {
	out := make([]bool, len(opens))
	for i := 1; i < len(opens); i++ {
		if closes[i-1] == 0 {
			continue
		}
		change := opens[i]/closes[i-1] - 1
		if d == above {
			out[i] = change > thresholdFrac
		} else {
			out[i] = change < -thresholdFrac
		}
	}
	return out
}

func defaulted(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ParseSpec decodes a JSON-encoded signal specification.
func ParseSpec(raw string) (Spec, error) {
	var spec Spec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return Spec{}, errors.NewValidationError("signal", raw, "malformed signal JSON: "+err.Error())
	}
	return spec, nil
}
