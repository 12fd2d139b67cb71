package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// TradePnL is one evaluated trade ready for bucketing: total P&L, the
// entry DTE of the primary leg, and the primary leg's |delta|.
type TradePnL struct {
	PnL      float64
	EntryDTE int
	AbsDelta float64
}

type bucketKey struct {
	dteLo   int
	deltaLo int // delta bucket index; lo = index * deltaInterval
}

// Aggregate bins trades into DTE x delta buckets and computes per-bucket
// statistics. DTE bins are half-open intervals of width dteInterval
// starting at exitDTE; delta bins of width deltaInterval starting at 0.
// Output is sorted by (DTE bucket, delta bucket) ascending.
func Aggregate(trades []TradePnL, exitDTE, dteInterval int, deltaInterval float64) []models.GroupStats {
	buckets := make(map[bucketKey][]float64)
	for _, t := range trades {
		dteIdx := (t.EntryDTE - exitDTE) / dteInterval
		if t.EntryDTE < exitDTE {
			continue
		}
		deltaIdx := int(math.Floor(t.AbsDelta / deltaInterval))
		key := bucketKey{dteLo: exitDTE + dteIdx*dteInterval, deltaLo: deltaIdx}
		buckets[key] = append(buckets[key], t.PnL)
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dteLo != keys[j].dteLo {
			return keys[i].dteLo < keys[j].dteLo
		}
		return keys[i].deltaLo < keys[j].deltaLo
	})

	out := make([]models.GroupStats, 0, len(keys))
	for _, k := range keys {
		pnls := buckets[k]
		sort.Float64s(pnls)
		quantile := func(p float64) float64 {
			pos := p * float64(len(pnls)-1)
			lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
			return pnls[lo] + (pos-float64(lo))*(pnls[hi]-pnls[lo])
		}

		wins, lossSum, winSum := 0, 0.0, 0.0
		for _, p := range pnls {
			if p > 0 {
				wins++
				winSum += p
			} else if p < 0 {
				lossSum += p
			}
		}

		g := models.GroupStats{
			DTELo:   k.dteLo,
			DTEHi:   k.dteLo + dteInterval,
			DeltaLo: float64(k.deltaLo) * deltaInterval,
			DeltaHi: float64(k.deltaLo+1) * deltaInterval,
			Count:   len(pnls),
			Mean:    stat.Mean(pnls, nil),
			Min:     pnls[0],
			Q25:     quantile(0.25),
			Median:  quantile(0.5),
			Q75:     quantile(0.75),
			Max:     pnls[len(pnls)-1],
			WinRate: float64(wins) / float64(len(pnls)),
		}
		if len(pnls) > 1 {
			g.Std = stat.StdDev(pnls, nil)
		}
		g.ProfitFactor = profitFactor(winSum, lossSum)
		out = append(out, g)
	}
	return out
}

// profitFactor applies the shared convention: wins/|losses|, +Inf when
// there are wins and no losses, 0 when there are neither.
func profitFactor(winSum, lossSum float64) float64 {
	switch {
	case lossSum < 0:
		return winSum / -lossSum
	case winSum > 0:
		return math.Inf(1)
	default:
		return 0
	}
}
