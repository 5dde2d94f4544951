package chart

import "encoding/json"

// Kind tags a shape primitive.
type Kind string

const (
	KindLine   Kind = "line"
	KindRect   Kind = "rect"
	KindPath   Kind = "path"
	KindCircle Kind = "circle"
)

// Layer fixes paint order: grid, then series, then overlay, then markers.
type Layer string

const (
	LayerGrid    Layer = "grid"
	LayerSeries  Layer = "series"
	LayerOverlay Layer = "overlay"
	LayerMarker  Layer = "marker"
)

var layerRank = map[Layer]int{LayerGrid: 0, LayerSeries: 1, LayerOverlay: 2, LayerMarker: 3}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style carries paint attributes. Colors are hex strings; an empty color means
// "not painted". Opacity values of zero mean fully opaque.
type Style struct {
	Fill        string    `json:"fill,omitempty"`
	FillOpacity float64   `json:"fill_opacity,omitempty"`
	GradientTo  float64   `json:"gradient_to,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
	RoundCap    bool      `json:"round_cap,omitempty"`
}

// Dashed reports whether the stroke has a dash pattern.
func (s Style) Dashed() bool { return len(s.Dash) > 0 }

// Shape is one drawable primitive. The set of implementations is closed:
// Line, Rect, Path and Circle.
type Shape interface {
	Kind() Kind
	Layer() Layer
	isShape()
}

type Line struct {
	From  Point `json:"from"`
	To    Point `json:"to"`
	Style Style `json:"style"`
	Z     Layer `json:"layer"`
}

type Rect struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Style Style   `json:"style"`
	Z     Layer   `json:"layer"`
}

type Path struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed,omitempty"`
	Style  Style   `json:"style"`
	Z      Layer   `json:"layer"`
}

type Circle struct {
	Center Point   `json:"center"`
	R      float64 `json:"r"`
	Style  Style   `json:"style"`
	Z      Layer   `json:"layer"`
}

func (Line) Kind() Kind   { return KindLine }
func (Rect) Kind() Kind   { return KindRect }
func (Path) Kind() Kind   { return KindPath }
func (Circle) Kind() Kind { return KindCircle }

func (l Line) Layer() Layer   { return l.Z }
func (r Rect) Layer() Layer   { return r.Z }
func (p Path) Layer() Layer   { return p.Z }
func (c Circle) Layer() Layer { return c.Z }

func (Line) isShape()   {}
func (Rect) isShape()   {}
func (Path) isShape()   {}
func (Circle) isShape() {}

// JSON encodings add a "kind" discriminator so consumers can switch on it.

func (l Line) MarshalJSON() ([]byte, error) {
	type plain Line
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		plain
	}{KindLine, plain(l)})
}

func (r Rect) MarshalJSON() ([]byte, error) {
	type plain Rect
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		plain
	}{KindRect, plain(r)})
}

func (p Path) MarshalJSON() ([]byte, error) {
	type plain Path
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		plain
	}{KindPath, plain(p)})
}

func (c Circle) MarshalJSON() ([]byte, error) {
	type plain Circle
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		plain
	}{KindCircle, plain(c)})
}
