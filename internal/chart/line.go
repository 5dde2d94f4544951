package chart

const (
	colorLine         = "#3B82F6"
	colorMarkerStroke = "#1E293B"
	lineWidth         = 3.0
	markerRadius      = 4.0
)

type lineRenderer struct{}

func (lineRenderer) Bucketed() bool { return false }

func (lineRenderer) Domain(s Series) (float64, float64) { return s.closeExtent() }

// Render emits the close polyline followed by one marker per point.
func (lineRenderer) Render(s Series, m *Mapper) []Shape {
	if len(s) == 0 {
		return nil
	}
	pts := closePoints(s, m)
	out := make([]Shape, 0, len(pts)+1)
	out = append(out, Path{
		Points: pts,
		Style:  Style{Stroke: colorLine, StrokeWidth: lineWidth, RoundCap: true},
		Z:      LayerSeries,
	})
	for _, p := range pts {
		out = append(out, Circle{
			Center: p,
			R:      markerRadius,
			Style:  Style{Fill: colorLine, Stroke: colorMarkerStroke, StrokeWidth: 2},
			Z:      LayerMarker,
		})
	}
	return out
}

func closePoints(s Series, m *Mapper) []Point {
	pts := make([]Point, len(s))
	for i, o := range s {
		pts[i] = m.Point(i, o.Close)
	}
	return pts
}
