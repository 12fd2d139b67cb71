package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, Long.Multiplier())
	assert.Equal(t, -1.0, Short.Multiplier())
	assert.Equal(t, Short, Long.Opposite())
	assert.Equal(t, Long, Short.Opposite())
}

func TestParseOptionType(t *testing.T) {
	for in, want := range map[string]OptionType{
		"call": Call, "CALL": Call, "C": Call, " c ": Call,
		"put": Put, "P": Put, "Put": Put,
	} {
		got, ok := ParseOptionType(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseOptionType("straddle")
	assert.False(t, ok)
}

func TestCommissionCalculate(t *testing.T) {
	c := Commission{PerContract: 0.65}
	assert.InDelta(t, 6.50, c.Calculate(10), 1e-10)
	assert.InDelta(t, 6.50, c.Calculate(-10), 1e-10, "negative contract counts use absolute value")

	c = Commission{PerContract: 0.65, BaseFee: 1.00}
	assert.InDelta(t, 4.25, c.Calculate(5), 1e-10)

	c = Commission{PerContract: 0.10, MinFee: 5.00}
	assert.InDelta(t, 5.00, c.Calculate(1), 1e-10)

	c = Commission{PerContract: 1.00, BaseFee: 5.00, MinFee: 2.00}
	assert.InDelta(t, 8.00, c.Calculate(3), 1e-10)

	assert.Zero(t, Commission{}.Calculate(10))
}

func TestTargetRangeValidate(t *testing.T) {
	assert.NoError(t, TargetRange{Target: 0.5, Min: 0.2, Max: 0.8}.Validate())
	assert.Error(t, TargetRange{Target: -0.5, Min: 0.2, Max: 0.8}.Validate())
	assert.Error(t, TargetRange{Target: 0.5, Min: 0.2, Max: 1.1}.Validate())
	assert.Error(t, TargetRange{Target: 0.5, Min: 0.8, Max: 0.2}.Validate())
	assert.Error(t, TargetRange{Target: 0.1, Min: 0.2, Max: 0.8}.Validate(), "target below min")
}

func TestSlippageValidate(t *testing.T) {
	assert.NoError(t, Slippage{Model: SlippageMid}.Validate())
	assert.NoError(t, Slippage{Model: SlippageLiquidity, FillRatio: 0.5}.Validate())
	assert.Error(t, Slippage{Model: SlippageLiquidity, FillRatio: 1.5}.Validate())
	assert.Error(t, Slippage{Model: SlippagePerLeg, PerLeg: -0.1}.Validate())
	assert.Error(t, Slippage{Model: "vwap"}.Validate())
}

func validBacktestParams() BacktestParams {
	return BacktestParams{
		Strategy:     "long_call",
		LegDeltas:    []TargetRange{{Target: 0.5, Min: 0.2, Max: 0.8}},
		MaxEntryDTE:  45,
		ExitDTE:      5,
		Slippage:     Slippage{Model: SlippageMid},
		Capital:      10000,
		Quantity:     1,
		Multiplier:   100,
		MaxPositions: 1,
		Selector:     SelectFirst,
	}
}

func TestBacktestParamsValidate(t *testing.T) {
	assert.NoError(t, validBacktestParams().Validate())

	p := validBacktestParams()
	p.Capital = -1000
	assert.Error(t, p.Validate())

	p = validBacktestParams()
	p.Quantity = 0
	assert.Error(t, p.Validate())

	p = validBacktestParams()
	p.Strategy = ""
	assert.Error(t, p.Validate())

	p = validBacktestParams()
	p.MaxPositions = 0
	assert.Error(t, p.Validate())

	p = validBacktestParams()
	sl := 2.0
	p.StopLoss = &sl
	assert.NoError(t, p.Validate(), "stop loss above 1.0 is legal")

	p = validBacktestParams()
	p.ExitDTE = 50
	assert.Error(t, p.Validate(), "exit_dte above max_entry_dte")

	p = validBacktestParams()
	p.ExitDTE = p.MaxEntryDTE
	assert.NoError(t, p.Validate(), "exit_dte equal to max_entry_dte is legal")
}

func TestEvaluateParamsValidate(t *testing.T) {
	p := EvaluateParams{
		Strategy:      "long_call",
		LegDeltas:     []TargetRange{{Target: 0.5, Min: 0.2, Max: 0.8}},
		MaxEntryDTE:   30,
		ExitDTE:       45,
		DTEInterval:   7,
		DeltaInterval: 0.05,
		Slippage:      Slippage{Model: SlippageMid},
	}
	assert.Error(t, p.Validate(), "exit_dte above max_entry_dte")

	p.ExitDTE = 7
	assert.NoError(t, p.Validate())

	p.DeltaInterval = 0
	assert.Error(t, p.Validate())
}

func TestDTEWholeDays(t *testing.T) {
	q := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DTE(q, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 32, DTE(q, time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DTE(q, q))
	// Intraday timestamps truncate to day before differencing.
	assert.Equal(t, 1, DTE(q.Add(15*time.Hour), time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC)))
}

func TestMetricsJSONInfinityRendering(t *testing.T) {
	m := PerformanceMetrics{Calmar: math.Inf(1), ProfitFactor: math.Inf(1), Sharpe: 1.25}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.Contains(s, `"calmar":"+inf"`), s)
	assert.True(t, strings.Contains(s, `"profit_factor":"+inf"`), s)
	assert.True(t, strings.Contains(s, `"sharpe":1.25`), s)
}

func TestGroupStatsRanges(t *testing.T) {
	g := GroupStats{DTELo: 5, DTEHi: 12, DeltaLo: 0.25, DeltaHi: 0.3}
	assert.Equal(t, "[5, 12)", g.DTERange())
	assert.Equal(t, "[0.25, 0.30)", g.DeltaRange())

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dte_range":"[5, 12)"`)
}

func TestStrategyDefMultiExpiration(t *testing.T) {
	s := StrategyDef{Legs: []LegDef{{Cycle: CyclePrimary}, {Cycle: CycleSecondary}}}
	assert.True(t, s.IsMultiExpiration())
	s = StrategyDef{Legs: []LegDef{{Cycle: CyclePrimary}}}
	assert.False(t, s.IsMultiExpiration())
}
