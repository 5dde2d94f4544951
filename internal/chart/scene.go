package chart

import "sort"

// AxisLabel is one value-axis tick: the text, where it is anchored, and the
// short tick segment drawn against the content edge.
type AxisLabel struct {
	Value  float64  `json:"value"`
	Text   string   `json:"text"`
	At     Point    `json:"at"`
	Anchor string   `json:"anchor"`
	Tick   [2]Point `json:"tick"`
	Color  string   `json:"color"`
}

type SwatchShape string

const (
	SwatchSquare SwatchShape = "square"
	SwatchLine   SwatchShape = "line"
)

type Swatch struct {
	Shape SwatchShape `json:"shape"`
	Style Style       `json:"style"`
}

type LegendEntry struct {
	Swatch Swatch `json:"swatch"`
	Text   string `json:"text"`
}

// Summary is the headline readout shown beside the chart.
type Summary struct {
	Last       float64 `json:"last"`
	LastText   string  `json:"last_text"`
	ChangePct  float64 `json:"change_pct"`
	ChangeText string  `json:"change_text"`
	Volume     float64 `json:"volume,omitempty"`
	VolumeText string  `json:"volume_text,omitempty"`
}

// Scene is the engine output. It is built once and never modified afterwards.
type Scene struct {
	Projection Projection    `json:"projection"`
	Viewport   Viewport      `json:"viewport"`
	Primitives []Shape       `json:"primitives"`
	AxisLabels []AxisLabel   `json:"axis_labels"`
	Legend     []LegendEntry `json:"legend"`
	Summary    *Summary      `json:"summary,omitempty"`
}

// Count returns the number of primitives of kind k in layer z.
func (s *Scene) Count(k Kind, z Layer) int {
	n := 0
	for _, p := range s.Primitives {
		if p.Kind() == k && p.Layer() == z {
			n++
		}
	}
	return n
}

// InLayer returns the primitives painted in layer z, in paint order.
func (s *Scene) InLayer(z Layer) []Shape {
	var out []Shape
	for _, p := range s.Primitives {
		if p.Layer() == z {
			out = append(out, p)
		}
	}
	return out
}

func sortByLayer(shapes []Shape) {
	sort.SliceStable(shapes, func(i, j int) bool {
		return layerRank[shapes[i].Layer()] < layerRank[shapes[j].Layer()]
	})
}
