package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlayOf(t *testing.T, scene *Scene) Path {
	t.Helper()
	paths := shapesOf[Path](scene.InLayer(LayerOverlay))
	require.Len(t, paths, 1)
	return paths[0]
}

func TestFixedOverlayGeometry(t *testing.T) {
	path := FixedOverlay(DefaultViewport)
	assert.Equal(t, []Point{{X: 616, Y: 100}, {X: 688, Y: 80}, {X: 760, Y: 70}}, path.Points)
	assert.Equal(t, []float64{8, 4}, path.Style.Dash)
	assert.Equal(t, colorOverlay, path.Style.Stroke)
	assert.True(t, path.Style.RoundCap)
	assert.Empty(t, path.Style.Fill)
}

func TestFixedOverlayClampedToContent(t *testing.T) {
	vp := Viewport{Width: 200, Height: 60, Padding: 10}
	for _, p := range FixedOverlay(vp).Points {
		assert.LessOrEqual(t, p.Y, vp.Bottom())
		assert.GreaterOrEqual(t, p.Y, vp.Top())
	}
}

func TestForecastOverlayUsesMapper(t *testing.T) {
	s := scenarioSeries()
	f := Forecast{StartIndex: 2, Prices: []float64{100, 105}}

	scene, err := ComputeScene(s, ProjectionLine, testViewport, WithForecast(f))
	require.NoError(t, err)
	path := overlayOf(t, scene)
	m := NewMapper(testViewport, 99, 102, len(s))
	require.Len(t, path.Points, 2)
	assert.Equal(t, m.X(2), path.Points[0].X)
	assert.Equal(t, m.Y(100), path.Points[0].Y)
	// index 3 is past the last point: clamped to the right edge, price above
	// the domain clamped to the top.
	assert.Equal(t, testViewport.Right(), path.Points[1].X)
	assert.Equal(t, testViewport.Top(), path.Points[1].Y)

	scene, err = ComputeScene(s, ProjectionCandlestick, testViewport, WithForecast(f))
	require.NoError(t, err)
	path = overlayOf(t, scene)
	cm := NewMapper(testViewport, 90, 105, len(s))
	assert.Equal(t, cm.SlotCenter(2), path.Points[0].X)
	assert.Equal(t, cm.Y(105), path.Points[1].Y)
}

func TestOverlayFallbacks(t *testing.T) {
	s := scenarioSeries()
	fixed := FixedOverlay(testViewport)

	scene, err := ComputeScene(s, ProjectionLine, testViewport)
	require.NoError(t, err)
	assert.Equal(t, fixed, overlayOf(t, scene), "no forecast")

	scene, err = ComputeScene(s, ProjectionVolume, testViewport,
		WithForecast(Forecast{StartIndex: 1, Prices: []float64{1, 2}}))
	require.NoError(t, err)
	assert.Equal(t, fixed, overlayOf(t, scene), "volume has no price scale")

	scene, err = ComputeScene(s, ProjectionLine, testViewport,
		WithForecast(Forecast{StartIndex: 1, Prices: []float64{100, 101}}), WithOverlay(OverlayFixed))
	require.NoError(t, err)
	assert.Equal(t, fixed, overlayOf(t, scene))

	scene, err = ComputeScene(s, ProjectionLine, testViewport, WithOverlay(OverlayNone))
	require.NoError(t, err)
	assert.Empty(t, scene.InLayer(LayerOverlay))

	_, err = ComputeScene(s, ProjectionLine, testViewport, WithOverlay("sideways"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWithForecastCopiesPrices(t *testing.T) {
	prices := []float64{100, 101}
	opt := WithForecast(Forecast{StartIndex: 0, Prices: prices})
	prices[0] = 0

	var o sceneOptions
	opt(&o)
	assert.Equal(t, 100.0, o.forecast.Prices[0])
}
