package draw

import (
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"FinChart/internal/chart"
)

type canvas struct {
	r    gochart.Renderer
	opts options
}

func px(v float64) int { return int(math.Round(v)) }

// color resolves a hex string and applies opacity in [0,1]; zero opacity means
// opaque. An empty hex is transparent.
func color(hex string, opacity float64) drawing.Color {
	if hex == "" {
		return drawing.ColorTransparent
	}
	c := drawing.ColorFromHex(hex)
	if opacity > 0 && opacity < 1 {
		c = c.WithAlpha(uint8(math.Round(opacity * 255)))
	}
	return c
}

func combine(a, b float64) float64 {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	default:
		return a * b
	}
}

func (c *canvas) style(s chart.Style) {
	c.r.ResetStyle()
	c.r.SetFillColor(color(s.Fill, combine(s.FillOpacity, s.Opacity)))
	c.r.SetStrokeColor(color(s.Stroke, s.Opacity))
	c.r.SetStrokeWidth(s.StrokeWidth)
	if s.Dashed() {
		c.r.SetStrokeDashArray(s.Dash)
	}
}

// paint finishes the current path with whatever the style asks for.
func (c *canvas) paint(s chart.Style) {
	switch {
	case s.Fill != "" && s.Stroke != "":
		c.r.FillStroke()
	case s.Fill != "":
		c.r.Fill()
	default:
		c.r.Stroke()
	}
}

func (c *canvas) background(w, h int) {
	bg := chart.Style{Fill: c.opts.background}
	c.style(bg)
	c.rect(0, 0, float64(w), float64(h))
	c.paint(bg)
}

func (c *canvas) rect(x, y, w, h float64) {
	c.r.MoveTo(px(x), px(y))
	c.r.LineTo(px(x+w), px(y))
	c.r.LineTo(px(x+w), px(y+h))
	c.r.LineTo(px(x), px(y+h))
	c.r.Close()
}

func (c *canvas) shape(s chart.Shape) {
	switch v := s.(type) {
	case chart.Line:
		c.style(v.Style)
		c.r.MoveTo(px(v.From.X), px(v.From.Y))
		c.r.LineTo(px(v.To.X), px(v.To.Y))
		c.r.Stroke()
	case chart.Rect:
		if v.H <= 0 || v.W <= 0 {
			return
		}
		c.style(v.Style)
		c.rect(v.X, v.Y, v.W, v.H)
		c.paint(v.Style)
	case chart.Path:
		if len(v.Points) == 0 {
			return
		}
		c.style(v.Style)
		c.r.MoveTo(px(v.Points[0].X), px(v.Points[0].Y))
		for _, p := range v.Points[1:] {
			c.r.LineTo(px(p.X), px(p.Y))
		}
		if v.Closed {
			c.r.Close()
		}
		c.paint(v.Style)
	case chart.Circle:
		c.style(v.Style)
		c.r.Circle(v.R, px(v.Center.X), px(v.Center.Y))
	}
}

func (c *canvas) text(body, hex string, x, y int) {
	c.r.SetFontColor(color(hex, 0))
	c.r.Text(body, x, y)
}

func (c *canvas) axis(labels []chart.AxisLabel) {
	for _, l := range labels {
		tick := chart.Style{Stroke: l.Color, StrokeWidth: 1}
		c.style(tick)
		c.r.MoveTo(px(l.Tick[0].X), px(l.Tick[0].Y))
		c.r.LineTo(px(l.Tick[1].X), px(l.Tick[1].Y))
		c.r.Stroke()

		x := px(l.At.X)
		if l.Anchor == "end" {
			x -= c.r.MeasureText(l.Text).Width()
		}
		c.text(l.Text, l.Color, x, px(l.At.Y)+4)
	}
}

// legend lays entries out right-to-left along the top edge so the last entry
// sits against the right padding.
func (c *canvas) legend(entries []chart.LegendEntry, vp chart.Viewport) {
	y := px(vp.Padding / 2)
	x := px(vp.Width - vp.Padding/2)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		x -= c.r.MeasureText(e.Text).Width()
		c.text(e.Text, c.opts.textColor, x, y+4)
		x -= legendGap / 2
		x -= legendSwatch
		c.swatch(e.Swatch, x, y)
		x -= legendGap * 2
	}
}

func (c *canvas) swatch(s chart.Swatch, x, y int) {
	c.style(s.Style)
	switch s.Shape {
	case chart.SwatchLine:
		c.r.MoveTo(x, y)
		c.r.LineTo(x+legendSwatch, y)
		c.r.Stroke()
	default:
		half := float64(legendSwatch) / 2
		c.rect(float64(x), float64(y)-half, legendSwatch, legendSwatch)
		st := s.Style
		if st.Fill == "" && st.Stroke == "" {
			return
		}
		c.paint(st)
	}
}

func (c *canvas) summary(s *chart.Summary, vp chart.Viewport) {
	line := "Current: " + s.LastText + "   Change: " + s.ChangeText
	if s.VolumeText != "" {
		line += "   Volume: " + s.VolumeText
	}
	c.text(line, c.opts.textColor, px(vp.Padding), px(vp.Height-vp.Padding/4))
}
