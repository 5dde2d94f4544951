// Package draw paints a chart.Scene onto a go-chart renderer, producing SVG or
// PNG output. It knows nothing about projections; it only draws primitives.
package draw

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"FinChart/internal/chart"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported image format %q", chart.ErrInvalidArgument, s)
	}
}

const (
	defaultBackground = "#0F172A"
	defaultTextColor  = "#CBD5E1"
	defaultFontSize   = 10.0
	legendSwatch      = 12
	legendGap         = 8
)

type options struct {
	background string
	textColor  string
	fontSize   float64
	title      string
	summary    bool
}

type Option func(*options)

// WithBackground sets the canvas fill color.
func WithBackground(hex string) Option {
	return func(o *options) { o.background = hex }
}

// WithTitle draws a caption in the top-left corner.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithFontSize sets the text size in points.
func WithFontSize(size float64) Option {
	return func(o *options) {
		if size > 0 {
			o.fontSize = size
		}
	}
}

// WithoutSummary omits the current price readout.
func WithoutSummary() Option {
	return func(o *options) { o.summary = false }
}

// Render draws scene in the requested format and writes the encoded image to w.
func Render(w io.Writer, scene *chart.Scene, format Format, opts ...Option) error {
	if scene == nil {
		return fmt.Errorf("%w: nil scene", chart.ErrInvalidArgument)
	}
	o := options{background: defaultBackground, textColor: defaultTextColor, fontSize: defaultFontSize, summary: true}
	for _, opt := range opts {
		opt(&o)
	}

	provider := gochart.SVG
	switch format {
	case FormatSVG:
	case FormatPNG:
		provider = gochart.PNG
	default:
		return fmt.Errorf("%w: unsupported image format %q", chart.ErrInvalidArgument, format)
	}

	width, height := int(math.Round(scene.Viewport.Width)), int(math.Round(scene.Viewport.Height))
	r, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	c := &canvas{r: r, opts: o}
	c.background(width, height)
	for _, shape := range scene.Primitives {
		c.shape(shape)
	}

	r.SetFont(font)
	r.SetFontSize(o.fontSize)
	c.axis(scene.AxisLabels)
	c.legend(scene.Legend, scene.Viewport)
	if o.title != "" {
		c.text(o.title, o.textColor, px(scene.Viewport.Padding), px(scene.Viewport.Padding/2)+4)
	}
	if o.summary && scene.Summary != nil {
		c.summary(scene.Summary, scene.Viewport)
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
