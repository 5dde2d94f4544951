package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChart/internal/domain/models"
)

func closes(vals ...float64) []models.Candle {
	out := make([]models.Candle, len(vals))
	for i, v := range vals {
		out[i] = models.Candle{Open: v, High: v, Low: v, Close: v}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	r := ComputeLogReturns(closes(100, 110, 0, 121))
	require.Len(t, r, 3)
	assert.InDelta(t, math.Log(1.1), r[0], 1e-12)
	assert.Equal(t, 0.0, r[1])
	assert.Equal(t, 0.0, r[2])
	assert.Nil(t, ComputeLogReturns(closes(100)))
}

func TestBarVolatility(t *testing.T) {
	assert.InDelta(t, 0.0, BarVolatility([]float64{0.01, 0.01, 0.01}, 0), 1e-9)
	assert.Equal(t, 0.0, BarVolatility([]float64{0.01}, 0))
	assert.InDelta(t, math.Sqrt(2)*0.01, BarVolatility([]float64{0.5, 0.01, -0.01}, 2), 1e-12)
}

func TestProjectPath(t *testing.T) {
	candles := closes(100, 102, 101, 104, 103, 106, 105, 108)
	f := ProjectPath(candles, 1, 0.8, 3)

	assert.Equal(t, 4, f.StartIndex)
	require.Len(t, f.Prices, 4)
	assert.Equal(t, 103.0, f.Prices[0])
	for k := 1; k < len(f.Prices); k++ {
		assert.Greater(t, f.Prices[k], f.Prices[k-1])
	}

	down := ProjectPath(candles, -1, 0.8, 3)
	assert.Less(t, down.Prices[3], down.Prices[0])

	flat := ProjectPath(candles, 0, 0.9, 3)
	assert.Equal(t, []float64{103, 103, 103, 103}, flat.Prices)
}

func TestProjectPathClampsAnchor(t *testing.T) {
	f := ProjectPath(closes(100, 101), 1, 1, 6)
	assert.Equal(t, 0, f.StartIndex)
	assert.Len(t, f.Prices, 7)

	empty := ProjectPath(nil, 1, 1, 6)
	assert.Equal(t, 0, empty.Len())
	none := ProjectPath(closes(1, 2), 1, 1, 0)
	assert.Equal(t, 0, none.Len())
}
