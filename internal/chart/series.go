package chart

import (
	"fmt"
	"math"
	"strconv"

	"FinChart/internal/domain/models"
)

// Observation is one time step of the series. Its position in the Series is the
// time axis; Label is display-only.
type Observation struct {
	Label  string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Bullish reports whether the bar closed above its open.
func (o Observation) Bullish() bool { return o.Close > o.Open }

// Validate checks the OHLCV invariants.
func (o Observation) Validate() error {
	for _, f := range []float64{o.Open, o.High, o.Low, o.Close, o.Volume} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidArgument)
		}
	}
	if o.High < math.Max(o.Open, o.Close) {
		return fmt.Errorf("%w: high %.4f below body", ErrInvalidArgument, o.High)
	}
	if o.Low > math.Min(o.Open, o.Close) {
		return fmt.Errorf("%w: low %.4f above body", ErrInvalidArgument, o.Low)
	}
	if o.Volume < 0 {
		return fmt.Errorf("%w: negative volume %.2f", ErrInvalidArgument, o.Volume)
	}
	return nil
}

// Series is an ordered, chronological sequence of observations.
type Series []Observation

// Validate checks every observation and reports the first offending index.
func (s Series) Validate() error {
	for i, o := range s {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
	}
	return nil
}

// FromCandles converts stored candles into an engine series.
func FromCandles(candles []models.Candle) Series {
	out := make(Series, 0, len(candles))
	for i, c := range candles {
		label := c.Label
		if label == "" && !c.Bucket.IsZero() {
			label = c.Bucket.UTC().Format("2006-01-02 15:04")
		}
		if label == "" {
			label = "Day " + strconv.Itoa(i+1)
		}
		out = append(out, Observation{
			Label:  label,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return out
}

func (s Series) priceExtent() (lo, hi float64) {
	if len(s) == 0 {
		return 0, 0
	}
	lo, hi = s[0].Low, s[0].High
	for _, o := range s[1:] {
		lo = math.Min(lo, o.Low)
		hi = math.Max(hi, o.High)
	}
	return lo, hi
}

func (s Series) closeExtent() (lo, hi float64) {
	if len(s) == 0 {
		return 0, 0
	}
	lo, hi = s[0].Close, s[0].Close
	for _, o := range s[1:] {
		lo = math.Min(lo, o.Close)
		hi = math.Max(hi, o.Close)
	}
	return lo, hi
}

func (s Series) volumeMax() float64 {
	hi := 0.0
	for _, o := range s {
		hi = math.Max(hi, o.Volume)
	}
	return hi
}
