// Package series provides synthetic bar sources.
package series

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"FinChart/internal/domain/models"
)

const (
	walkStart     = 175.0
	walkStep      = 4.0
	walkWick      = 3.0
	walkVolumeMin = 500_000.0
	walkVolumeAdd = 1_000_000.0
	walkFloor     = 1.0
)

// RandomWalk generates demo OHLCV bars. Output is deterministic for a given
// seed, symbol and length.
type RandomWalk struct {
	seed  int64
	start time.Time
}

type WalkOption func(*RandomWalk)

// WithStart sets the bucket of the first bar; bars are one day apart.
func WithStart(t time.Time) WalkOption {
	return func(w *RandomWalk) { w.start = t.UTC() }
}

func NewRandomWalk(seed int64, opts ...WalkOption) *RandomWalk {
	w := &RandomWalk{seed: seed, start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Series returns n bars for symbol.
func (w *RandomWalk) Series(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative length %d", n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	rng := rand.New(rand.NewSource(w.seedFor(symbol)))

	out := make([]models.Candle, 0, n)
	prev := walkStart
	for i := 0; i < n; i++ {
		open := prev
		close := math.Max(open+(rng.Float64()*2-1)*walkStep, walkFloor)
		high := math.Max(open, close) + rng.Float64()*walkWick
		low := math.Max(math.Min(open, close)-rng.Float64()*walkWick, 0)
		out = append(out, models.Candle{
			Bucket: w.start.AddDate(0, 0, i),
			Symbol: symbol,
			Label:  "Day " + strconv.Itoa(i+1),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: math.Floor(walkVolumeMin + rng.Float64()*walkVolumeAdd),
		})
		prev = close
	}
	return out, nil
}

func (w *RandomWalk) seedFor(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return w.seed + int64(h.Sum64()>>1)
}
