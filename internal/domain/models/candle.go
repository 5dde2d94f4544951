package models

import "time"

// Candle represents one OHLCV bar as stored and served by the series providers.
type Candle struct {
	Bucket time.Time
	Symbol string
	Label  string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Prediction is the response of the external prediction service.
type Prediction struct {
	Symbol     string  `json:"symbol"`
	Signal     int     `json:"signal"` // -1, 0, 1
	Confidence float64 `json:"confidence"`
	ImageB64   string  `json:"image_b64"`
	Action     string  `json:"action"` // "BUY", "HOLD", "SELL"
}

// ActionForSignal maps a prediction signal to the trading action shown to users.
func ActionForSignal(signal int) string {
	switch {
	case signal > 0:
		return "BUY"
	case signal < 0:
		return "SELL"
	default:
		return "HOLD"
	}
}

// RenderEvent is published after a scene is computed.
type RenderEvent struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Projection string    `json:"projection"`
	Points     int       `json:"points"`
	Primitives int       `json:"primitives"`
	Forecast   bool      `json:"forecast"`
	DurationMS float64   `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
