package chart

import "fmt"

const (
	colorOverlay = "#DC2626"
	overlayWidth = 3.0
)

var overlayDash = []float64{8, 4}

// OverlayMode selects how the prediction overlay is produced.
type OverlayMode string

const (
	// OverlayForecast maps a supplied Forecast through the active mapper and
	// falls back to the fixed path when none is usable.
	OverlayForecast OverlayMode = "forecast"
	// OverlayFixed always draws the illustrative trend anchored at 80% width.
	OverlayFixed OverlayMode = "fixed"
	OverlayNone  OverlayMode = "none"
)

func ParseOverlayMode(s string) (OverlayMode, error) {
	switch m := OverlayMode(s); m {
	case OverlayForecast, OverlayFixed, OverlayNone:
		return m, nil
	case "":
		return OverlayForecast, nil
	default:
		return "", fmt.Errorf("%w: unknown overlay mode %q", ErrInvalidArgument, s)
	}
}

// Forecast is a run of predicted prices. Prices[k] belongs to series index
// StartIndex+k, which may lie beyond the last observation.
type Forecast struct {
	StartIndex int       `json:"start_index"`
	Prices     []float64 `json:"prices"`
}

// Len is the number of predicted points.
func (f *Forecast) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Prices)
}

func overlayStyle() Style {
	return Style{
		Stroke:      colorOverlay,
		StrokeWidth: overlayWidth,
		Dash:        append([]float64(nil), overlayDash...),
		RoundCap:    true,
	}
}

// FixedOverlay is the illustrative prediction trend: it starts at 80% of the
// content width and rises toward the top-right corner.
func FixedOverlay(vp Viewport) Path {
	cw := vp.ContentWidth()
	pts := []Point{
		{X: vp.Padding + cw*0.8, Y: vp.Padding + 60},
		{X: vp.Padding + cw*0.9, Y: vp.Padding + 40},
		{X: vp.Padding + cw, Y: vp.Padding + 30},
	}
	for i := range pts {
		pts[i].Y = vp.clampY(pts[i].Y)
	}
	return Path{Points: pts, Style: overlayStyle(), Z: LayerOverlay}
}

// ForecastOverlay maps f through m so the predicted path shares the active
// projection's scale. Indices past the last slot are clamped to the right
// edge of the content rectangle. It reports false when f has fewer than two
// points.
func ForecastOverlay(f *Forecast, m *Mapper, bucketed bool) (Path, bool) {
	if f.Len() < 2 {
		return Path{}, false
	}
	vp := m.Viewport()
	pts := make([]Point, 0, f.Len())
	for k, price := range f.Prices {
		i := f.StartIndex + k
		x := m.X(i)
		if bucketed {
			x = m.SlotCenter(i)
		}
		pts = append(pts, Point{X: vp.clampX(x), Y: vp.clampY(m.Y(price))})
	}
	return Path{Points: pts, Style: overlayStyle(), Z: LayerOverlay}, true
}

func renderOverlay(mode OverlayMode, p Projection, f *Forecast, m *Mapper, bucketed bool) []Shape {
	switch mode {
	case OverlayNone:
		return nil
	case OverlayForecast:
		// Volume bars are not on a price scale, so a price forecast cannot be mapped.
		if p != ProjectionVolume {
			if path, ok := ForecastOverlay(f, m, bucketed); ok {
				return []Shape{path}
			}
		}
	}
	return []Shape{FixedOverlay(m.Viewport())}
}
