package chart

import (
	"fmt"
	"strings"
)

// Projection is one of the four visual encodings of a series.
type Projection uint8

const (
	ProjectionCandlestick Projection = iota + 1
	ProjectionLine
	ProjectionArea
	ProjectionVolume
)

var projectionNames = map[Projection]string{
	ProjectionCandlestick: "candlestick",
	ProjectionLine:        "line",
	ProjectionArea:        "area",
	ProjectionVolume:      "volume",
}

var projectionAliases = map[string]Projection{
	"candlestick": ProjectionCandlestick,
	"candle":      ProjectionCandlestick,
	"line":        ProjectionLine,
	"area":        ProjectionArea,
	"volume":      ProjectionVolume,
	"volume-bar":  ProjectionVolume,
	"volume_bar":  ProjectionVolume,
	"bar":         ProjectionVolume,
}

// Projections lists every projection in selector order.
func Projections() []Projection {
	return []Projection{ProjectionCandlestick, ProjectionLine, ProjectionArea, ProjectionVolume}
}

// ParseProjection resolves a projection name. Unknown names are an error;
// there is no fallback projection.
func ParseProjection(s string) (Projection, error) {
	p, ok := projectionAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown projection %q", ErrInvalidArgument, s)
	}
	return p, nil
}

func (p Projection) Valid() bool {
	_, ok := projectionNames[p]
	return ok
}

func (p Projection) String() string {
	if name, ok := projectionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("projection(%d)", uint8(p))
}

func (p Projection) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: projection %d", ErrInvalidArgument, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Projection) UnmarshalText(b []byte) error {
	v, err := ParseProjection(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Renderer turns a series into primitives for one projection.
type Renderer interface {
	// Domain returns the vertical extent the projection is scaled to.
	Domain(s Series) (lo, hi float64)
	Render(s Series, m *Mapper) []Shape
	// Bucketed reports whether indices own slots instead of points.
	Bucketed() bool
}

var renderers = map[Projection]Renderer{
	ProjectionCandlestick: candlestickRenderer{},
	ProjectionLine:        lineRenderer{},
	ProjectionArea:        areaRenderer{},
	ProjectionVolume:      volumeRenderer{},
}

// RendererFor returns the renderer bound to p.
func RendererFor(p Projection) (Renderer, error) {
	r, ok := renderers[p]
	if !ok {
		return nil, fmt.Errorf("%w: no renderer for %s", ErrInvalidArgument, p)
	}
	return r, nil
}
