package chart

const (
	colorArea       = "#10B981"
	areaFillOpacity = 0.4
	areaFillFade    = 0.05
)

type areaRenderer struct{}

func (areaRenderer) Bucketed() bool { return false }

func (areaRenderer) Domain(s Series) (float64, float64) { return s.closeExtent() }

// Render emits the filled polygon closed against the content bottom, then the
// stroked close line on top of it.
func (areaRenderer) Render(s Series, m *Mapper) []Shape {
	if len(s) == 0 {
		return nil
	}
	pts := closePoints(s, m)
	bottom := m.Viewport().Bottom()

	poly := make([]Point, 0, len(pts)+2)
	poly = append(poly, Point{X: pts[0].X, Y: bottom})
	poly = append(poly, pts...)
	poly = append(poly, Point{X: pts[len(pts)-1].X, Y: bottom})

	return []Shape{
		Path{
			Points: poly,
			Closed: true,
			Style:  Style{Fill: colorArea, FillOpacity: areaFillOpacity, GradientTo: areaFillFade},
			Z:      LayerSeries,
		},
		Path{
			Points: pts,
			Style:  Style{Stroke: colorArea, StrokeWidth: lineWidth, RoundCap: true},
			Z:      LayerSeries,
		},
	}
}
