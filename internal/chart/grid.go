package chart

const (
	colorGrid   = "#334155"
	gridColumns = 10
	gridRows    = 8
)

// Grid returns the background grid for vp as a 10x8 lattice of cells, each
// contributing its top and left edge.
func Grid(vp Viewport) []Shape {
	style := Style{Stroke: colorGrid, StrokeWidth: 0.5, Opacity: 0.3}
	cw, ch := vp.ContentWidth(), vp.ContentHeight()
	out := make([]Shape, 0, gridColumns+gridRows)
	for k := 0; k < gridColumns; k++ {
		x := vp.Left() + cw*float64(k)/gridColumns
		out = append(out, Line{
			From:  Point{X: x, Y: vp.Top()},
			To:    Point{X: x, Y: vp.Bottom()},
			Style: style,
			Z:     LayerGrid,
		})
	}
	for k := 0; k < gridRows; k++ {
		y := vp.Top() + ch*float64(k)/gridRows
		out = append(out, Line{
			From:  Point{X: vp.Left(), Y: y},
			To:    Point{X: vp.Right(), Y: y},
			Style: style,
			Z:     LayerGrid,
		})
	}
	return out
}
