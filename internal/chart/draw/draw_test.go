package draw

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChart/internal/chart"
)

func testScene(t *testing.T, p chart.Projection) *chart.Scene {
	t.Helper()
	s := chart.Series{
		{Open: 100, High: 105, Low: 95, Close: 102, Volume: 1000},
		{Open: 102, High: 103, Low: 98, Close: 99, Volume: 2000},
		{Open: 99, High: 101, Low: 90, Close: 100, Volume: 1500},
	}
	scene, err := chart.ComputeScene(s, p, chart.Viewport{Width: 300, Height: 150, Padding: 10})
	require.NoError(t, err)
	return scene
}

func TestRenderSVG(t *testing.T) {
	for _, p := range chart.Projections() {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, testScene(t, p), FormatSVG, WithTitle("AAPL")), p.String())
		out := buf.String()
		assert.Contains(t, out, "<svg")
		assert.Contains(t, out, "CNN Prediction")
		assert.Contains(t, out, "AAPL")
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testScene(t, chart.ProjectionCandlestick), FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderEmptyScene(t *testing.T) {
	scene, err := chart.ComputeScene(nil, chart.ProjectionLine, chart.DefaultViewport)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, scene, FormatSVG))
	assert.Contains(t, buf.String(), "Price Movement")
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, testScene(t, chart.ProjectionLine), Format("gif"))
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)

	_, err = ParseFormat("jpeg")
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
}

func TestColorOpacity(t *testing.T) {
	assert.Equal(t, uint8(255), color("#10B981", 0).A)
	assert.Equal(t, uint8(102), color("#10B981", 0.4).A)
	assert.Equal(t, uint8(0), color("", 0).A)
}
