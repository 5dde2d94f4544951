package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"FinChart/internal/chart"
	"FinChart/internal/domain/models"
	domrepo "FinChart/internal/domain/repository"
	domsvc "FinChart/internal/domain/service"
	icache "FinChart/internal/service/cache"
	"FinChart/internal/services/features"
	"FinChart/internal/services/prediction"
	applogger "FinChart/pkg/logger"
)

// ChartParams selects what to draw.
type ChartParams struct {
	Symbol     string
	Projection chart.Projection
	Viewport   chart.Viewport
	N          int
	Overlay    chart.OverlayMode
}

// ChartResult is a computed scene plus the prediction it was drawn with.
type ChartResult struct {
	Symbol          string             `json:"symbol"`
	Scene           *chart.Scene       `json:"scene"`
	Prediction      *models.Prediction `json:"prediction,omitempty"`
	PredictionError string             `json:"prediction_error,omitempty"`
	Forecast        *chart.Forecast    `json:"forecast,omitempty"`
	Cached          bool               `json:"cached"`
}

// snapshot is the cached input of a render: bars and prediction for one
// symbol and length. Scenes are recomputed from it on every request.
type snapshot struct {
	Candles         []models.Candle    `json:"candles"`
	Prediction      *models.Prediction `json:"prediction,omitempty"`
	PredictionError string             `json:"prediction_error,omitempty"`
}

type ChartOption func(*ChartUseCase)

func WithCache(c icache.BytesCache, ttl time.Duration) ChartOption {
	return func(uc *ChartUseCase) {
		uc.cache = c
		uc.ttl = ttl
	}
}

func WithPredictor(p domsvc.Predictor) ChartOption {
	return func(uc *ChartUseCase) { uc.predictor = p }
}

func WithPublisher(p domrepo.RenderPublisher) ChartOption {
	return func(uc *ChartUseCase) { uc.publisher = p }
}

func WithMetrics(m domrepo.Metrics) ChartOption {
	return func(uc *ChartUseCase) { uc.metrics = m }
}

func WithLogger(l *applogger.Logger) ChartOption {
	return func(uc *ChartUseCase) { uc.l = l }
}

// WithHorizon sets how many bars the forecast path spans.
func WithHorizon(n int) ChartOption {
	return func(uc *ChartUseCase) { uc.horizon = n }
}

// WithMaxPoints caps the series length a caller may ask for.
func WithMaxPoints(n int) ChartOption {
	return func(uc *ChartUseCase) { uc.maxPoints = n }
}

func WithGrid(enabled bool) ChartOption {
	return func(uc *ChartUseCase) { uc.grid = enabled }
}

// ChartUseCase loads a series and a prediction and lays them out as a scene.
type ChartUseCase struct {
	provider  domrepo.SeriesProvider
	predictor domsvc.Predictor
	cache     icache.BytesCache
	ttl       time.Duration
	publisher domrepo.RenderPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	horizon   int
	maxPoints int
	grid      bool
	now       func() time.Time
}

func NewChartUseCase(provider domrepo.SeriesProvider, opts ...ChartOption) *ChartUseCase {
	uc := &ChartUseCase{
		provider:  provider,
		ttl:       30 * time.Second,
		l:         applogger.Nop(),
		horizon:   6,
		maxPoints: 5000,
		grid:      true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Render computes the scene for p. A failing prediction does not fail the
// render: the overlay falls back and the error text is returned alongside.
func (uc *ChartUseCase) Render(ctx context.Context, p ChartParams) (*ChartResult, error) {
	p.Symbol = prediction.NormalizeSymbol(p.Symbol)
	if p.N <= 0 || p.N > uc.maxPoints {
		return nil, fmt.Errorf("%w: n must be between 1 and %d", chart.ErrInvalidArgument, uc.maxPoints)
	}
	if _, err := chart.RendererFor(p.Projection); err != nil {
		return nil, err
	}
	mode, err := chart.ParseOverlayMode(string(p.Overlay))
	if err != nil {
		return nil, err
	}

	start := uc.now()
	snap, cached, err := uc.load(ctx, p.Symbol, p.N)
	if err != nil {
		uc.recordError("series")
		return nil, err
	}

	opts, forecast := uc.sceneOptions(snap, mode)
	scene, err := chart.ComputeScene(chart.FromCandles(snap.Candles), p.Projection, p.Viewport, opts...)
	if err != nil {
		uc.recordError("scene")
		return nil, err
	}
	elapsed := uc.now().Sub(start)

	if uc.metrics != nil {
		uc.metrics.RecordRender(p.Projection.String(), elapsed.Seconds(), len(scene.Primitives))
		if n := len(snap.Candles); n > 0 {
			uc.metrics.RecordLastClose(p.Symbol, snap.Candles[n-1].Close)
		}
	}
	uc.publish(ctx, p, scene, forecast != nil, elapsed)
	uc.l.Debug("chart.render ok",
		applogger.String("symbol", p.Symbol),
		applogger.String("projection", p.Projection.String()),
		applogger.Int("points", len(snap.Candles)),
		applogger.Int("primitives", len(scene.Primitives)),
		applogger.Bool("cached", cached),
		applogger.Duration("duration_ms", elapsed),
	)

	return &ChartResult{
		Symbol:          p.Symbol,
		Scene:           scene,
		Prediction:      snap.Prediction,
		PredictionError: snap.PredictionError,
		Forecast:        forecast,
		Cached:          cached,
	}, nil
}

func (uc *ChartUseCase) sceneOptions(snap *snapshot, mode chart.OverlayMode) ([]chart.Option, *chart.Forecast) {
	opts := []chart.Option{chart.WithOverlay(mode)}
	if !uc.grid {
		opts = append(opts, chart.WithoutGrid())
	}
	if snap.Prediction == nil || mode != chart.OverlayForecast {
		return opts, nil
	}
	f := features.ProjectPath(snap.Candles, snap.Prediction.Signal, snap.Prediction.Confidence, uc.horizon)
	if f.Len() < 2 {
		return opts, nil
	}
	return append(opts, chart.WithForecast(f)), &f
}

func cacheKey(symbol string, n int) string {
	return fmt.Sprintf("chart:%s:%d", symbol, n)
}

func (uc *ChartUseCase) load(ctx context.Context, symbol string, n int) (*snapshot, bool, error) {
	key := cacheKey(symbol, n)
	if uc.cache != nil {
		b, ok, err := uc.cache.GetBytes(ctx, key)
		if err != nil {
			uc.l.Warn("chart.cache get error", applogger.String("key", key), applogger.Error(err))
		}
		if ok {
			var snap snapshot
			if err := json.Unmarshal(b, &snap); err == nil {
				uc.recordCache(true)
				return &snap, true, nil
			}
		}
		uc.recordCache(false)
	}

	snap, err := uc.fetch(ctx, symbol, n)
	if err != nil {
		return nil, false, err
	}
	uc.store(ctx, key, snap)
	return snap, false, nil
}

// Warm reloads bars and prediction for symbol and replaces the cached copy.
func (uc *ChartUseCase) Warm(ctx context.Context, symbol string, n int) error {
	symbol = prediction.NormalizeSymbol(symbol)
	snap, err := uc.fetch(ctx, symbol, n)
	if err != nil {
		return err
	}
	uc.store(ctx, cacheKey(symbol, n), snap)
	return nil
}

// store caches snap. A failed prediction is not cached so the next request
// tries again.
func (uc *ChartUseCase) store(ctx context.Context, key string, snap *snapshot) {
	if uc.cache == nil || snap.PredictionError != "" {
		return
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := uc.cache.SetBytes(ctx, key, b, uc.ttl); err != nil {
		uc.l.Warn("chart.cache set error", applogger.String("key", key), applogger.Error(err))
	}
}

// fetch loads bars and prediction concurrently. Only a series failure is an
// error.
func (uc *ChartUseCase) fetch(ctx context.Context, symbol string, n int) (*snapshot, error) {
	var (
		snap    snapshot
		predErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		candles, err := uc.provider.Series(gctx, symbol, n)
		if err != nil {
			return fmt.Errorf("load series: %w", err)
		}
		snap.Candles = candles
		return nil
	})
	if uc.predictor != nil {
		g.Go(func() error {
			pred, err := uc.predictor.Predict(gctx, symbol)
			if err != nil {
				predErr = err
				return nil
			}
			snap.Prediction = &pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if predErr != nil {
		// The prediction call is cancelled when the series fails, so this is
		// a genuine upstream failure.
		if !errors.Is(predErr, context.Canceled) {
			uc.recordError("prediction")
		}
		snap.PredictionError = predErr.Error()
	}
	return &snap, nil
}

func (uc *ChartUseCase) publish(ctx context.Context, p ChartParams, scene *chart.Scene, forecast bool, elapsed time.Duration) {
	if uc.publisher == nil {
		return
	}
	ev := &models.RenderEvent{
		ID:         uuid.NewString(),
		Symbol:     p.Symbol,
		Projection: p.Projection.String(),
		Points:     p.N,
		Primitives: len(scene.Primitives),
		Forecast:   forecast,
		DurationMS: float64(elapsed.Microseconds()) / 1000,
		Timestamp:  uc.now().UTC(),
	}
	if err := uc.publisher.PublishRender(ctx, ev); err != nil {
		uc.recordError("publish")
		uc.l.Warn("chart.publish error", applogger.String("symbol", p.Symbol), applogger.Error(err))
	}
}

func (uc *ChartUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}

func (uc *ChartUseCase) recordCache(hit bool) {
	if uc.metrics != nil {
		uc.metrics.RecordCache(hit)
	}
}
