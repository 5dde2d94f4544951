package chart

import "math"

const (
	colorBullish = "#10B981"
	colorBearish = "#EF4444"

	candleBodyRatio = 0.6
	candleMinHeight = 1.0
)

// candlestickRenderer draws one wick and one body per observation, centred in
// the observation's slot. Direction is carried by color alone.
type candlestickRenderer struct{}

func (candlestickRenderer) Bucketed() bool { return true }

func (candlestickRenderer) Domain(s Series) (float64, float64) { return s.priceExtent() }

func (candlestickRenderer) Render(s Series, m *Mapper) []Shape {
	out := make([]Shape, 0, 2*len(s))
	bodyW := m.SlotWidth() * candleBodyRatio
	for i, o := range s {
		color := colorBearish
		if o.Bullish() {
			color = colorBullish
		}
		cx := m.SlotCenter(i)
		openY, closeY := m.Y(o.Open), m.Y(o.Close)
		lowY := m.Y(o.Low)
		top := math.Min(openY, closeY)
		h := math.Max(math.Abs(openY-closeY), candleMinHeight)
		// A padded body grows upward so it never dips below the low.
		if top+h > lowY {
			top = lowY - h
		}

		out = append(out,
			Line{
				From:  Point{X: cx, Y: m.Y(o.High)},
				To:    Point{X: cx, Y: lowY},
				Style: Style{Stroke: color, StrokeWidth: 1},
				Z:     LayerSeries,
			},
			Rect{
				X:     cx - bodyW/2,
				Y:     top,
				W:     bodyW,
				H:     h,
				Style: Style{Fill: color, Stroke: color, StrokeWidth: 1},
				Z:     LayerSeries,
			},
		)
	}
	return out
}
