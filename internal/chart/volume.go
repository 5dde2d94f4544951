package chart

const (
	colorVolume   = "#8B5CF6"
	volumeOpacity = 0.8
	volumeRatio   = 0.8
)

// volumeRenderer anchors one bar per observation to the content bottom. Bar
// height is volume relative to the series maximum; a zero maximum draws
// zero-height bars.
type volumeRenderer struct{}

func (volumeRenderer) Bucketed() bool { return true }

func (volumeRenderer) Domain(s Series) (float64, float64) { return 0, s.volumeMax() }

func (volumeRenderer) Render(s Series, m *Mapper) []Shape {
	out := make([]Shape, 0, len(s))
	vp := m.Viewport()
	ch := vp.ContentHeight()
	vmax := s.volumeMax()
	barW := m.SlotWidth() * volumeRatio
	for i, o := range s {
		h := 0.0
		if vmax > 0 {
			h = o.Volume / vmax * ch
		}
		out = append(out, Rect{
			X:     m.SlotCenter(i) - barW/2,
			Y:     vp.Bottom() - h,
			W:     barW,
			H:     h,
			Style: Style{Fill: colorVolume, Opacity: volumeOpacity},
			Z:     LayerSeries,
		})
	}
	return out
}
