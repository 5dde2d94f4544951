package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinChart/internal/chart"
	"FinChart/internal/domain/models"
	domrepo "FinChart/internal/domain/repository"
	pkgkafka "FinChart/pkg/kafka"
	applogger "FinChart/pkg/logger"
	"FinChart/pkg/util"
)

// barMessage is the ingest payload: {symbol, t, o, h, l, c, v, label}.
// t is epoch seconds, epoch milliseconds or an RFC3339 string.
type barMessage struct {
	Symbol string          `json:"symbol"`
	T      json.RawMessage `json:"t"`
	O      float64         `json:"o"`
	H      float64         `json:"h"`
	L      float64         `json:"l"`
	C      float64         `json:"c"`
	V      float64         `json:"v"`
	Label  string          `json:"label"`
}

// IngestHandler consumes bar messages from Kafka and appends them to a sink.
type IngestHandler struct {
	topic   string
	sink    domrepo.CandleSink
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewIngestHandler(topic string, sink domrepo.CandleSink, metrics domrepo.Metrics, l *applogger.Logger) *IngestHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &IngestHandler{topic: topic, sink: sink, metrics: metrics, l: l}
}

func (h *IngestHandler) Topic() string { return h.topic }

// Handle decodes and stores one bar. Malformed bars are permanent failures;
// sink errors are returned for retry.
func (h *IngestHandler) Handle(ctx context.Context, b []byte) error {
	var m barMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.recordError("ingest_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode bar: %w", err))
	}
	candle, err := m.candle()
	if err != nil {
		h.recordError("ingest_invalid")
		return pkgkafka.Permanent(err)
	}
	if h.metrics != nil {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(candle.Bucket).Seconds())
	}

	start := time.Now()
	err = h.sink.Append(ctx, candle)
	if h.metrics != nil {
		h.metrics.RecordLatency("ingest_append_seconds", time.Since(start).Seconds())
	}
	if err != nil {
		h.recordError("ingest_append")
		return fmt.Errorf("append bar: %w", err)
	}
	h.l.Debug("ingest.bar ok", applogger.String("symbol", candle.Symbol), applogger.Float64("close", candle.Close))
	return nil
}

func (m barMessage) candle() (models.Candle, error) {
	symbol := strings.ToUpper(strings.TrimSpace(m.Symbol))
	if symbol == "" {
		return models.Candle{}, fmt.Errorf("%w: bar without symbol", chart.ErrInvalidArgument)
	}
	ts, ok := util.ParseTime(string(m.T))
	if !ok {
		return models.Candle{}, fmt.Errorf("%w: bar without timestamp", chart.ErrInvalidArgument)
	}
	obs := chart.Observation{Open: m.O, High: m.H, Low: m.L, Close: m.C, Volume: m.V}
	if err := obs.Validate(); err != nil {
		return models.Candle{}, fmt.Errorf("bar %s: %w", symbol, err)
	}
	return models.Candle{
		Bucket: ts.UTC(),
		Symbol: symbol,
		Label:  m.Label,
		Open:   m.O,
		High:   m.H,
		Low:    m.L,
		Close:  m.C,
		Volume: m.V,
	}, nil
}

func (h *IngestHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*IngestHandler)(nil)
