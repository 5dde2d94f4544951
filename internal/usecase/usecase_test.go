package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChart/internal/chart"
	"FinChart/internal/domain/models"
	icache "FinChart/internal/service/cache"
	"FinChart/internal/series"
	pkgkafka "FinChart/pkg/kafka"
)

var vp = chart.Viewport{Width: 800, Height: 400, Padding: 40}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	inner *series.RandomWalk
	err   error
}

func (p *countingProvider) Series(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.inner.Series(ctx, symbol, n)
}

type stubPredictor struct {
	pred models.Prediction
	err  error
}

func (s stubPredictor) Predict(_ context.Context, symbol string) (models.Prediction, error) {
	if s.err != nil {
		return models.Prediction{}, s.err
	}
	p := s.pred
	p.Symbol = symbol
	return p, nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []*models.RenderEvent
}

func (p *memPublisher) PublishRender(_ context.Context, ev *models.RenderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type memMetrics struct {
	mu      sync.Mutex
	renders int
	errors  map[string]int
	hits    int
	misses  int
}

func (m *memMetrics) RecordRender(string, float64, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
}

func (m *memMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
}

func (m *memMetrics) RecordLastClose(string, float64) {}

func (m *memMetrics) RecordCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *memMetrics) RecordLatency(string, float64) {}

func newProvider() *countingProvider {
	return &countingProvider{inner: series.NewRandomWalk(1)}
}

func TestRenderWithForecast(t *testing.T) {
	pub := &memPublisher{}
	met := &memMetrics{}
	uc := NewChartUseCase(newProvider(),
		WithPredictor(stubPredictor{pred: models.Prediction{Signal: 1, Confidence: 0.8, Action: "BUY"}}),
		WithPublisher(pub),
		WithMetrics(met),
	)

	res, err := uc.Render(context.Background(), ChartParams{
		Symbol: "aapl", Projection: chart.ProjectionLine, Viewport: vp, N: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Symbol)
	require.NotNil(t, res.Prediction)
	assert.Equal(t, "BUY", res.Prediction.Action)
	require.NotNil(t, res.Forecast)
	assert.Equal(t, 23, res.Forecast.StartIndex)
	assert.Len(t, res.Forecast.Prices, 7)
	assert.Equal(t, 1, res.Scene.Count(chart.KindPath, chart.LayerOverlay))
	assert.Len(t, res.Scene.AxisLabels, 6)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "line", pub.events[0].Projection)
	assert.True(t, pub.events[0].Forecast)
	assert.NotEmpty(t, pub.events[0].ID)
	assert.Equal(t, 1, met.renders)
}

func TestRenderPredictionFailureFallsBack(t *testing.T) {
	met := &memMetrics{}
	uc := NewChartUseCase(newProvider(),
		WithPredictor(stubPredictor{err: errors.New("model offline")}),
		WithMetrics(met),
	)

	res, err := uc.Render(context.Background(), ChartParams{
		Symbol: "AAPL", Projection: chart.ProjectionCandlestick, Viewport: vp, N: 30,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Prediction)
	assert.Nil(t, res.Forecast)
	assert.Equal(t, "model offline", res.PredictionError)

	overlay := res.Scene.InLayer(chart.LayerOverlay)
	require.Len(t, overlay, 1)
	assert.Equal(t, chart.FixedOverlay(vp), overlay[0])
	assert.Equal(t, 1, met.errors["prediction"])
}

func TestRenderSeriesFailure(t *testing.T) {
	p := newProvider()
	p.err = errors.New("db down")
	_, err := NewChartUseCase(p).Render(context.Background(), ChartParams{
		Symbol: "AAPL", Projection: chart.ProjectionArea, Viewport: vp, N: 30,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestRenderRejectsBadArguments(t *testing.T) {
	uc := NewChartUseCase(newProvider(), WithMaxPoints(100))
	ctx := context.Background()

	_, err := uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: vp, N: 101})
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)

	_, err = uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.Projection(42), Viewport: vp, N: 10})
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)

	_, err = uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: vp, N: 10, Overlay: "sideways"})
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)

	_, err = uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: chart.Viewport{Width: 50, Height: 50, Padding: 40}, N: 10})
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)
}

func TestRenderUsesCache(t *testing.T) {
	p := newProvider()
	met := &memMetrics{}
	uc := NewChartUseCase(p, WithCache(icache.NewTTLCache(), time.Minute), WithMetrics(met))
	ctx := context.Background()

	first, err := uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: vp, N: 30})
	require.NoError(t, err)
	second, err := uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.ProjectionVolume, Viewport: vp, N: 30})
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, met.hits)
	assert.Equal(t, 1, met.misses)
}

func TestWarmRefreshesCache(t *testing.T) {
	p := newProvider()
	uc := NewChartUseCase(p, WithCache(icache.NewTTLCache(), time.Minute))
	ctx := context.Background()

	require.NoError(t, uc.Warm(ctx, "aapl", 30))
	res, err := uc.Render(ctx, ChartParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: vp, N: 30})
	require.NoError(t, err)
	assert.True(t, res.Cached)

	require.NoError(t, uc.Warm(ctx, "AAPL", 30))
	assert.Equal(t, 2, p.calls)
}

func TestSessionLifecycle(t *testing.T) {
	charts := NewChartUseCase(newProvider())
	uc := NewSessionUseCase(charts, 2, nil)
	ctx := context.Background()

	v, err := uc.Create(ctx, SessionParams{Symbol: "msft", Projection: chart.ProjectionCandlestick, Viewport: vp, N: 20})
	require.NoError(t, err)
	assert.Equal(t, "MSFT", v.Symbol)
	assert.Equal(t, "candlestick", v.Projection)
	assert.Equal(t, 20, v.Scene.Count(chart.KindRect, chart.LayerSeries))

	v, err = uc.Select(v.ID, chart.ProjectionVolume)
	require.NoError(t, err)
	assert.Equal(t, "volume", v.Projection)

	_, err = uc.Select(v.ID, chart.Projection(9))
	assert.ErrorIs(t, err, chart.ErrInvalidArgument)
	got, err := uc.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "volume", got.Projection)

	v, err = uc.Refresh(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "volume", v.Projection)

	require.NoError(t, uc.Delete(v.ID))
	_, err = uc.Get(v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, uc.Delete(v.ID), ErrSessionNotFound)
}

func TestSessionLimit(t *testing.T) {
	uc := NewSessionUseCase(NewChartUseCase(newProvider()), 1, nil)
	ctx := context.Background()
	p := SessionParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: vp, N: 5}

	_, err := uc.Create(ctx, p)
	require.NoError(t, err)
	_, err = uc.Create(ctx, p)
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 1, uc.Len())
}

func TestSessionLimitUnderConcurrentCreates(t *testing.T) {
	uc := NewSessionUseCase(NewChartUseCase(newProvider()), 2, nil)
	p := SessionParams{Symbol: "AAPL", Projection: chart.ProjectionLine, Viewport: vp, N: 5}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Create(context.Background(), p)
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, ErrTooManySessions) {
				rejected++
			} else if err == nil {
				created++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, created)
	assert.Equal(t, 14, rejected)
	assert.Equal(t, 2, uc.Len())
}

type memSink struct {
	candles []models.Candle
	err     error
}

func (s *memSink) Append(_ context.Context, candles ...models.Candle) error {
	if s.err != nil {
		return s.err
	}
	s.candles = append(s.candles, candles...)
	return nil
}

func TestIngestHandler(t *testing.T) {
	sink := &memSink{}
	h := NewIngestHandler("chart.bars", sink, &memMetrics{}, nil)
	assert.Equal(t, "chart.bars", h.Topic())

	msg := []byte(`{"symbol":"aapl","t":1704186000000,"o":100,"h":105,"l":99,"c":104,"v":12000}`)
	require.NoError(t, h.Handle(context.Background(), msg))
	require.Len(t, sink.candles, 1)
	c := sink.candles[0]
	assert.Equal(t, "AAPL", c.Symbol)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), c.Bucket)
	assert.Equal(t, 104.0, c.Close)

	msg = []byte(`{"symbol":"MSFT","t":"2024-01-02T09:01:00Z","o":1,"h":2,"l":1,"c":2,"v":1}`)
	require.NoError(t, h.Handle(context.Background(), msg))
	require.Len(t, sink.candles, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 1, 0, 0, time.UTC), sink.candles[1].Bucket)
}

func TestIngestHandlerRejectsBadBars(t *testing.T) {
	h := NewIngestHandler("chart.bars", &memSink{}, nil, nil)
	ctx := context.Background()

	var perm *backoff.PermanentError
	for _, msg := range []string{
		`not json`,
		`{"t":1704186000,"o":1,"h":1,"l":1,"c":1}`,
		`{"symbol":"AAPL","o":1,"h":1,"l":1,"c":1}`,
		`{"symbol":"AAPL","t":1704186000,"o":10,"h":9,"l":8,"c":9}`,
	} {
		err := h.Handle(ctx, []byte(msg))
		require.Error(t, err, msg)
		assert.True(t, errors.As(err, &perm), msg)
	}
}

func TestIngestHandlerSinkErrorIsRetryable(t *testing.T) {
	h := NewIngestHandler("chart.bars", &memSink{err: errors.New("locked")}, nil, nil)
	err := h.Handle(context.Background(), []byte(`{"symbol":"AAPL","t":1704186000,"o":1,"h":2,"l":1,"c":2,"v":1}`))
	require.Error(t, err)

	var perm *backoff.PermanentError
	assert.False(t, errors.As(err, &perm))
}

var _ pkgkafka.MessageHandler = (*IngestHandler)(nil)
