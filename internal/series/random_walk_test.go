package series

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChart/internal/chart"
)

func TestRandomWalkDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewRandomWalk(42).Series(ctx, "aapl", 30)
	require.NoError(t, err)
	b, err := NewRandomWalk(42).Series(ctx, "AAPL", 30)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewRandomWalk(42).Series(ctx, "MSFT", 30)
	require.NoError(t, err)
	assert.NotEqual(t, a[5].Close, c[5].Close)
}

func TestRandomWalkShape(t *testing.T) {
	bars, err := NewRandomWalk(7).Series(context.Background(), "AAPL", 200)
	require.NoError(t, err)
	require.Len(t, bars, 200)

	assert.Equal(t, 175.0, bars[0].Open)
	assert.Equal(t, "Day 1", bars[0].Label)
	assert.Equal(t, "Day 200", bars[199].Label)
	for i, b := range bars {
		if i > 0 {
			assert.Equal(t, bars[i-1].Close, b.Open, "bar %d opens at previous close", i)
			assert.LessOrEqual(t, math.Abs(b.Close-b.Open), walkStep+1e-9)
		}
		assert.GreaterOrEqual(t, b.Volume, walkVolumeMin)
		assert.Less(t, b.Volume, walkVolumeMin+walkVolumeAdd)
	}
	assert.NoError(t, chart.FromCandles(bars).Validate())
}

func TestRandomWalkEdgeLengths(t *testing.T) {
	bars, err := NewRandomWalk(1).Series(context.Background(), "AAPL", 0)
	require.NoError(t, err)
	assert.Empty(t, bars)

	_, err = NewRandomWalk(1).Series(context.Background(), "AAPL", -1)
	assert.Error(t, err)
}
