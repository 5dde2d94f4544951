package chart

import (
	"sync"
	"sync/atomic"
)

type sceneOptions struct {
	forecast *Forecast
	overlay  OverlayMode
	grid     bool
}

// Option customizes scene computation.
type Option func(*sceneOptions)

// WithForecast supplies predicted prices for the overlay.
func WithForecast(f Forecast) Option {
	f.Prices = append([]float64(nil), f.Prices...)
	return func(o *sceneOptions) {
		cp := f
		o.forecast = &cp
	}
}

// WithOverlay selects the overlay mode. The default is OverlayForecast.
func WithOverlay(mode OverlayMode) Option {
	return func(o *sceneOptions) { o.overlay = mode }
}

// WithoutGrid omits the background grid layer.
func WithoutGrid() Option {
	return func(o *sceneOptions) { o.grid = false }
}

// ComputeScene lays out series under projection p on vp. It is a pure
// function of its arguments. An empty series yields a valid scene with no
// primitives and no axis labels; the legend is always populated.
func ComputeScene(series Series, p Projection, vp Viewport, opts ...Option) (*Scene, error) {
	r, err := RendererFor(p)
	if err != nil {
		return nil, err
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	o := sceneOptions{overlay: OverlayForecast, grid: true}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseOverlayMode(string(o.overlay)); err != nil {
		return nil, err
	}

	scene := &Scene{
		Projection: p,
		Viewport:   vp,
		Primitives: []Shape{},
		AxisLabels: []AxisLabel{},
		Legend:     Legend(p),
		Summary:    Summarize(series, p),
	}
	if len(series) == 0 {
		return scene, nil
	}

	lo, hi := r.Domain(series)
	m := NewMapper(vp, lo, hi, len(series))

	if o.grid {
		scene.Primitives = append(scene.Primitives, Grid(vp)...)
	}
	scene.Primitives = append(scene.Primitives, r.Render(series, m)...)
	scene.Primitives = append(scene.Primitives, renderOverlay(o.overlay, p, o.forecast, m, r.Bucketed())...)
	sortByLayer(scene.Primitives)

	format := PriceLabel
	if p == ProjectionVolume {
		format = VolumeLabel
	}
	scene.AxisLabels = Ticks(m, format)
	return scene, nil
}

// Controller holds the current projection and the scene computed for it.
// Events (Select, Refresh) are serialized; readers always see a complete
// scene, either the previous one or the new one.
type Controller struct {
	mu         sync.Mutex
	projection Projection
	viewport   Viewport
	series     Series
	opts       []Option

	scene atomic.Pointer[Scene]
}

// NewController computes the initial scene. It fails on the same inputs
// ComputeScene rejects.
func NewController(p Projection, vp Viewport, series Series, opts ...Option) (*Controller, error) {
	c := &Controller{projection: p, viewport: vp, series: series, opts: opts}
	scene, err := ComputeScene(series, p, vp, opts...)
	if err != nil {
		return nil, err
	}
	c.scene.Store(scene)
	return c, nil
}

// Select switches the projection and replaces the scene. On error the
// controller keeps its previous projection and scene.
func (c *Controller) Select(p Projection) (*Scene, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	scene, err := ComputeScene(c.series, p, c.viewport, c.opts...)
	if err != nil {
		return nil, err
	}
	c.projection = p
	c.scene.Store(scene)
	return scene, nil
}

// Refresh replaces the series under the current projection. Non-empty opts
// replace the options given earlier.
func (c *Controller) Refresh(series Series, opts ...Option) (*Scene, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(opts) == 0 {
		opts = c.opts
	}
	scene, err := ComputeScene(series, c.projection, c.viewport, opts...)
	if err != nil {
		return nil, err
	}
	c.series, c.opts = series, opts
	c.scene.Store(scene)
	return scene, nil
}

func (c *Controller) Scene() *Scene { return c.scene.Load() }

func (c *Controller) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *Controller) Viewport() Viewport { return c.viewport }
