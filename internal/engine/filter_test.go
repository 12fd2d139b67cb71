package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func TestFilterLegPipeline(t *testing.T) {
	qd := day(2024, 1, 15)
	exp := day(2024, 2, 16) // 32 DTE
	c := buildChain(
		callRow(qd, exp, 100, 2.0, 2.50, 0.50),
		callRow(qd, exp, 105, 1.5, 2.0, 0.40),
		putRow(qd, exp, 100, 3.0, 3.50, -0.45),
		callRow(qd, exp, 110, 0, 0.50, 0.30), // zero bid dropped
	)

	leg := deltaLeg(models.Long, models.Call, 0.50, 0.25, 0.55)
	rows := FilterLeg(c, leg, 45, 5)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.50, c.Delta[rows[0]], "closest to target wins")
}

func TestFilterLegDTERange(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 1, 15), exp, 100, 2.0, 2.5, 0.50), // 32 DTE
		callRow(day(2024, 2, 10), exp, 100, 1.0, 1.5, 0.40), // 6 DTE
		callRow(day(2024, 2, 14), exp, 100, 0.5, 1.0, 0.30), // 2 DTE
	)
	leg := deltaLeg(models.Long, models.Call, 0.50, 0.0, 1.0)

	rows := FilterLeg(c, leg, 45, 5)
	require.Len(t, rows, 2, "2-DTE row excluded")

	rows = FilterLeg(c, leg, 10, 5)
	require.Len(t, rows, 1)
	assert.Equal(t, 6, c.DTE(rows[0]))

	// Boundaries are inclusive on both ends.
	rows = FilterLeg(c, leg, 32, 32)
	require.Len(t, rows, 1)
	assert.Equal(t, 32, c.DTE(rows[0]))
}

func TestFilterLegDropsOutOfRangeDeltas(t *testing.T) {
	qd, exp := day(2024, 1, 15), day(2024, 2, 16)
	c := buildChain(
		callRow(qd, exp, 90, 0.5, 1.0, 0.10),
		callRow(qd, exp, 110, 5.0, 5.5, 0.90),
	)
	leg := deltaLeg(models.Long, models.Call, 0.50, 0.40, 0.60)
	assert.Empty(t, FilterLeg(c, leg, 45, 5))
}

func TestFilterLegPutsMatchOnAbsDelta(t *testing.T) {
	qd, exp := day(2024, 1, 15), day(2024, 2, 16)
	c := buildChain(
		putRow(qd, exp, 95, 1.0, 1.5, -0.30),
		putRow(qd, exp, 100, 2.0, 2.5, -0.45),
	)
	leg := deltaLeg(models.Short, models.Put, 0.30, 0.10, 0.40)
	rows := FilterLeg(c, leg, 45, 5)
	require.Len(t, rows, 1)
	assert.Equal(t, -0.30, c.Delta[rows[0]])
}

func TestFilterLegTieBreaksOnLowerStrike(t *testing.T) {
	qd, exp := day(2024, 1, 15), day(2024, 2, 16)
	c := buildChain(
		callRow(qd, exp, 105, 1.0, 1.5, 0.52),
		callRow(qd, exp, 100, 2.0, 2.5, 0.48),
	)
	leg := deltaLeg(models.Long, models.Call, 0.50, 0.25, 0.55)
	rows := FilterLeg(c, leg, 45, 5)
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, c.Strike[rows[0]], "equal distance resolves to lower strike")
}

func TestFilterLegOneRowPerGroup(t *testing.T) {
	exp1, exp2 := day(2024, 2, 16), day(2024, 3, 15)
	c := buildChain(
		callRow(day(2024, 1, 15), exp1, 100, 2.0, 2.5, 0.50),
		callRow(day(2024, 1, 15), exp1, 105, 1.5, 2.0, 0.40),
		callRow(day(2024, 1, 15), exp2, 100, 3.0, 3.5, 0.55),
		callRow(day(2024, 1, 16), exp1, 100, 2.0, 2.5, 0.49),
	)
	leg := deltaLeg(models.Long, models.Call, 0.50, 0.0, 1.0)
	rows := FilterLeg(c, leg, 90, 0)
	assert.Len(t, rows, 3, "one row per (quote date, expiration) group")
}

type genRow struct {
	DayOffset int
	DTE       int
	Strike    float64
	Bid       float64
	Spread    float64
	Delta     float64
}

// Leg-filter soundness over generated chains: every surviving row
// satisfies all pipeline predicates and groups stay unique.
func TestFilterLegSoundnessProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	rowGen := gen.Struct(reflect.TypeOf(genRow{}), map[string]gopter.Gen{
		"DayOffset": gen.IntRange(0, 10),
		"DTE":       gen.IntRange(0, 60),
		"Strike":    gen.Float64Range(50, 150),
		"Bid":       gen.Float64Range(-1, 5),
		"Spread":    gen.Float64Range(0, 1),
		"Delta":     gen.Float64Range(0, 1),
	})

	properties.Property("surviving rows satisfy every predicate", prop.ForAll(
		func(raw []genRow) bool {
			base := day(2024, 1, 1)
			rows := make([]row, 0, len(raw))
			for _, r := range raw {
				qd := base.AddDate(0, 0, r.DayOffset)
				rows = append(rows, callRow(qd, qd.AddDate(0, 0, r.DTE), r.Strike, r.Bid, r.Bid+r.Spread, r.Delta))
			}
			c := buildChain(rows...)

			leg := deltaLeg(models.Long, models.Call, 0.40, 0.20, 0.60)
			const maxEntryDTE, exitDTE = 45, 5

			selected := FilterLeg(c, leg, maxEntryDTE, exitDTE)
			groups := make(map[string]bool)
			for _, i := range selected {
				dte := c.DTE(i)
				if dte < exitDTE || dte > maxEntryDTE {
					return false
				}
				if c.Bid[i] <= 0 || c.Ask[i] <= 0 {
					return false
				}
				if c.Delta[i] < leg.Delta.Min || c.Delta[i] > leg.Delta.Max {
					return false
				}
				key := c.QuoteDate[i].Format(time.DateOnly) + "/" + c.Expiration[i].Format(time.DateOnly)
				if groups[key] {
					return false
				}
				groups[key] = true
			}
			return true
		},
		gen.SliceOf(rowGen),
	))

	properties.TestingRun(t)
}
