package chart

// MapPrice maps a value in [lo, hi] onto the vertical pixel axis of vp.
// Higher values land higher on screen (smaller Y). A zero-width domain maps
// every value onto the content mid-line.
func MapPrice(value, lo, hi float64, vp Viewport) float64 {
	ch := vp.ContentHeight()
	span := hi - lo
	if span == 0 {
		return vp.Padding + ch/2
	}
	return vp.Padding + ch - (value-lo)/span*ch
}

// MapIndex maps index i of count points onto the horizontal pixel axis for
// point-based projections. A single point sits in the middle.
func MapIndex(i, count int, vp Viewport) float64 {
	cw := vp.ContentWidth()
	if count <= 1 {
		return vp.Padding + cw/2
	}
	return vp.Padding + float64(i)/float64(count-1)*cw
}

// Mapper binds a viewport, a vertical domain and a point count.
type Mapper struct {
	vp    Viewport
	lo    float64
	hi    float64
	count int
}

func NewMapper(vp Viewport, lo, hi float64, count int) *Mapper {
	return &Mapper{vp: vp, lo: lo, hi: hi, count: count}
}

func (m *Mapper) Viewport() Viewport               { return m.vp }
func (m *Mapper) Domain() (lo, hi float64)         { return m.lo, m.hi }
func (m *Mapper) Count() int                       { return m.count }
func (m *Mapper) Y(value float64) float64          { return MapPrice(value, m.lo, m.hi, m.vp) }
func (m *Mapper) X(i int) float64                  { return MapIndex(i, m.count, m.vp) }
func (m *Mapper) Point(i int, value float64) Point { return Point{X: m.X(i), Y: m.Y(value)} }

// SlotWidth is the horizontal space owned by one index on bucketed projections.
func (m *Mapper) SlotWidth() float64 {
	if m.count <= 0 {
		return 0
	}
	return m.vp.ContentWidth() / float64(m.count)
}

// SlotCenter is the centre of index i's slot.
func (m *Mapper) SlotCenter(i int) float64 {
	slot := m.SlotWidth()
	return m.vp.Padding + float64(i)*slot + slot/2
}
