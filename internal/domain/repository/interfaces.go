package repository

import (
	"context"

	"FinChart/internal/domain/models"
)

// SeriesProvider returns the latest n bars for a symbol in chronological order.
type SeriesProvider interface {
	Series(ctx context.Context, symbol string, n int) ([]models.Candle, error)
}

// CandleSink persists bars arriving from an external feed.
type CandleSink interface {
	Append(ctx context.Context, candles ...models.Candle) error
}

// RenderPublisher announces computed scenes to downstream consumers.
type RenderPublisher interface {
	PublishRender(ctx context.Context, ev *models.RenderEvent) error
}

type Metrics interface {
	RecordRender(projection string, seconds float64, primitives int)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordCache(hit bool)
	RecordLatency(op string, seconds float64)
}
