package engine

import (
	"sort"
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// MatchedLeg pairs an entry row with its exit row in the same chain.
// Exit is -1 when no exit lookup was performed (entry-candidate path).
type MatchedLeg struct {
	Entry int
	Exit  int
}

type contractKey struct {
	expiration time.Time
	strike     float64
	optionType models.OptionType
	symbol     string
}

// MatchEntryExit finds, for each entry row, the row of the same
// contract whose quote date is closest to (expiration - exitDTE days),
// strictly after the entry and not after expiration. Entries with no
// such row are discarded. Ties resolve to the earlier quote date.
func MatchEntryExit(c *chain.Chain, entries []int, exitDTE int) []MatchedLeg {
	byContract := make(map[contractKey][]int)
	for i := 0; i < c.Len(); i++ {
		key := contractKey{c.Expiration[i], c.Strike[i], c.OptionType[i], c.Symbol[i]}
		byContract[key] = append(byContract[key], i)
	}
	for _, rows := range byContract {
		sort.Slice(rows, func(a, b int) bool {
			return c.QuoteDate[rows[a]].Before(c.QuoteDate[rows[b]])
		})
	}

	matched := make([]MatchedLeg, 0, len(entries))
	for _, e := range entries {
		key := contractKey{c.Expiration[e], c.Strike[e], c.OptionType[e], c.Symbol[e]}
		target := c.Expiration[e].AddDate(0, 0, -exitDTE)

		bestRow := -1
		bestDist := 0
		for _, r := range byContract[key] {
			if !c.QuoteDate[r].After(c.QuoteDate[e]) || c.QuoteDate[r].After(c.Expiration[e]) {
				continue
			}
			dist := models.DTE(target, c.QuoteDate[r])
			if dist < 0 {
				dist = -dist
			}
			// Rows are in ascending date order, so on equal distance
			// the earlier date wins.
			if bestRow < 0 || dist < bestDist {
				bestRow, bestDist = r, dist
			}
		}
		if bestRow >= 0 {
			matched = append(matched, MatchedLeg{Entry: e, Exit: bestRow})
		}
	}
	return matched
}
