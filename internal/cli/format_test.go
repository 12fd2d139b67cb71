package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func TestParseDeltas(t *testing.T) {
	got, err := parseDeltas("0.5:0.2:0.8")
	require.NoError(t, err)
	assert.Equal(t, []models.TargetRange{{Target: 0.5, Min: 0.2, Max: 0.8}}, got)

	got, err = parseDeltas("0.5:0.2:0.8, 0.3:0.1:0.5")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.3, got[1].Target)

	_, err = parseDeltas("")
	assert.Error(t, err)
	_, err = parseDeltas("0.5:0.2")
	assert.Error(t, err)
	_, err = parseDeltas("a:b:c")
	assert.Error(t, err)
}

func TestDownsampleEquity(t *testing.T) {
	curve := make([]models.EquityPoint, 400)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range curve {
		curve[i] = models.EquityPoint{Datetime: base.AddDate(0, 0, i), Equity: float64(i)}
	}
	thinned := downsampleEquity(curve)
	require.Len(t, thinned, maxTransportPoints)
	assert.Equal(t, curve[0], thinned[0])
	assert.Equal(t, curve[len(curve)-1], thinned[len(thinned)-1])

	short := curve[:10]
	assert.Len(t, downsampleEquity(short), 10, "short curves pass through")
}
