package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
	"github.com/goldspanlabs/optopsy-mcp/internal/strategies"
)

func TestMatchEntryExitClosestToTarget(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 1, 15), exp, 100, 5.0, 5.5, 0.50), // entry
		callRow(day(2024, 2, 8), exp, 100, 2.5, 3.0, 0.35),  // 3 days off target
		callRow(day(2024, 2, 11), exp, 100, 2.0, 2.5, 0.30), // target = exp - 5d
		callRow(day(2024, 2, 14), exp, 100, 1.0, 1.5, 0.20), // 3 days off target
	)

	matched := MatchEntryExit(c, []int{0}, 5)
	require.Len(t, matched, 1)
	assert.Equal(t, day(2024, 2, 11), c.QuoteDate[matched[0].Exit])
}

func TestMatchEntryExitRequiresLaterRow(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 2, 11), exp, 100, 2.0, 2.5, 0.30),
	)
	// The only row for the contract is the entry itself.
	assert.Empty(t, MatchEntryExit(c, []int{0}, 5))
}

func TestMatchEntryExitIgnoresOtherContracts(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 1, 15), exp, 100, 5.0, 5.5, 0.50),
		callRow(day(2024, 2, 11), exp, 105, 2.0, 2.5, 0.30), // different strike
		putRow(day(2024, 2, 11), exp, 100, 2.0, 2.5, -0.30), // different type
	)
	assert.Empty(t, MatchEntryExit(c, []int{0}, 5))
}

func TestMatchEntryExitNotPastExpiration(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 1, 15), exp, 100, 5.0, 5.5, 0.50),
		callRow(day(2024, 2, 20), exp, 100, 0.1, 0.2, 0.01), // after expiration
	)
	assert.Empty(t, MatchEntryExit(c, []int{0}, 5))
}

func TestMatchEntryExitTieResolvesEarlier(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 1, 15), exp, 100, 5.0, 5.5, 0.50),
		callRow(day(2024, 2, 10), exp, 100, 2.5, 3.0, 0.35), // 1 day before target
		callRow(day(2024, 2, 12), exp, 100, 2.0, 2.5, 0.30), // 1 day after target
	)
	matched := MatchEntryExit(c, []int{0}, 5)
	require.Len(t, matched, 1)
	assert.Equal(t, day(2024, 2, 10), c.QuoteDate[matched[0].Exit])
}

func TestMatchEntryExitAtMostOneExitPerEntry(t *testing.T) {
	exp := day(2024, 2, 16)
	c := buildChain(
		callRow(day(2024, 1, 15), exp, 100, 5.0, 5.5, 0.50),
		callRow(day(2024, 1, 16), exp, 100, 5.0, 5.5, 0.50),
		callRow(day(2024, 2, 11), exp, 100, 2.0, 2.5, 0.30),
	)
	matched := MatchEntryExit(c, []int{0, 1}, 5)
	assert.Len(t, matched, 2)
	for _, m := range matched {
		assert.Equal(t, 2, m.Exit)
	}
}

func TestJoinLegsSingleExpiration(t *testing.T) {
	exp := day(2024, 2, 16)
	qd1, qd2 := day(2024, 1, 15), day(2024, 1, 16)
	c := buildChain(
		callRow(qd1, exp, 100, 5.0, 5.5, 0.50), // 0: leg0 day1
		callRow(qd1, exp, 105, 3.0, 3.5, 0.35), // 1: leg1 day1
		callRow(qd2, exp, 100, 5.0, 5.5, 0.50), // 2: leg0 day2 (no leg1 partner)
	)
	def, _ := findDef(t, "bull_call_spread")

	legRows := [][]MatchedLeg{
		{{Entry: 0}, {Entry: 2}},
		{{Entry: 1}},
	}
	joined := JoinLegs(c, def, legRows)
	require.Len(t, joined, 1)
	assert.Equal(t, qd1, joined[0].QuoteDate)
	assert.Equal(t, []MatchedLeg{{Entry: 0}, {Entry: 1}}, joined[0].Legs)
}

func TestJoinLegsAscendingStrikeOrder(t *testing.T) {
	exp := day(2024, 2, 16)
	qd1, qd2 := day(2024, 1, 15), day(2024, 1, 16)
	c := buildChain(
		callRow(qd1, exp, 100, 5.0, 5.5, 0.50), // 0
		callRow(qd1, exp, 105, 3.0, 3.5, 0.35), // 1 ascending: kept
		callRow(qd2, exp, 105, 3.0, 3.5, 0.35), // 2
		callRow(qd2, exp, 100, 5.0, 5.5, 0.50), // 3 descending: dropped
	)
	def, _ := findDef(t, "bull_call_spread")

	legRows := [][]MatchedLeg{
		{{Entry: 0}, {Entry: 2}},
		{{Entry: 1}, {Entry: 3}},
	}
	joined := JoinLegs(c, def, legRows)
	require.Len(t, joined, 1)
	assert.Equal(t, qd1, joined[0].QuoteDate)
}

func TestJoinLegsEqualStrikesDroppedWhenAscending(t *testing.T) {
	exp := day(2024, 2, 16)
	qd := day(2024, 1, 15)
	c := buildChain(
		callRow(qd, exp, 100, 5.0, 5.5, 0.50),
		callRow(qd, exp, 100, 5.0, 5.5, 0.50),
	)
	def, _ := findDef(t, "bull_call_spread")
	joined := JoinLegs(c, def, [][]MatchedLeg{{{Entry: 0}}, {{Entry: 1}}})
	assert.Empty(t, joined)
}

func TestJoinLegsRelaxedOrderKeepsSharedStrikes(t *testing.T) {
	exp := day(2024, 2, 16)
	qd := day(2024, 1, 15)
	c := buildChain(
		callRow(qd, exp, 100, 5.0, 5.5, 0.50),
		putRow(qd, exp, 100, 4.0, 4.5, -0.50),
	)
	def, _ := findDef(t, "long_straddle")
	joined := JoinLegs(c, def, [][]MatchedLeg{{{Entry: 0}}, {{Entry: 1}}})
	assert.Len(t, joined, 1, "straddles join at a shared strike")
}

func TestJoinLegsMultiExpiration(t *testing.T) {
	near, far := day(2024, 2, 16), day(2024, 3, 15)
	qd := day(2024, 1, 15)
	c := buildChain(
		callRow(qd, near, 100, 2.0, 2.5, 0.50), // 0: primary short
		callRow(qd, far, 100, 4.0, 4.5, 0.55),  // 1: secondary long
	)
	def, _ := findDef(t, "call_calendar_spread")
	joined := JoinLegs(c, def, [][]MatchedLeg{{{Entry: 0}}, {{Entry: 1}}})
	require.Len(t, joined, 1)
	assert.Equal(t, near, joined[0].Expiration)
	assert.Equal(t, far, joined[0].SecondaryExpiration)
}

func TestJoinLegsMultiExpirationRejectsInvertedCycles(t *testing.T) {
	near, far := day(2024, 2, 16), day(2024, 3, 15)
	qd := day(2024, 1, 15)
	c := buildChain(
		callRow(qd, far, 100, 4.0, 4.5, 0.55),  // 0: primary on the FAR expiry
		callRow(qd, near, 100, 2.0, 2.5, 0.50), // 1: secondary on the NEAR expiry
	)
	def, _ := findDef(t, "call_calendar_spread")
	joined := JoinLegs(c, def, [][]MatchedLeg{{{Entry: 0}}, {{Entry: 1}}})
	assert.Empty(t, joined, "secondary expiration must be after primary")
}

func findDef(t *testing.T, name string) (models.StrategyDef, bool) {
	t.Helper()
	def, ok := strategies.Find(name)
	require.True(t, ok, name)
	return def, ok
}
