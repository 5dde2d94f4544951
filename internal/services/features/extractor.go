package features

import (
	"math"

	"FinChart/internal/chart"
	"FinChart/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// BarVolatility is the sample standard deviation of the last window log
// returns, in per-bar units. A window of 0 uses every return.
func BarVolatility(logReturns []float64, window int) float64 {
	if window <= 0 || window > len(logReturns) {
		window = len(logReturns)
	}
	if window <= 1 {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// ProjectPath turns a directional signal into a forecast path. The path is
// anchored on the close horizon bars before the last one and walks forward
// horizon steps of price*exp(signal*confidence*sigma*k), so the predicted run
// overlaps the end of the chart. A zero signal yields a flat path.
func ProjectPath(candles []models.Candle, signal int, confidence float64, horizon int) chart.Forecast {
	if len(candles) == 0 || horizon <= 0 {
		return chart.Forecast{}
	}
	anchor := len(candles) - 1 - horizon
	if anchor < 0 {
		anchor = 0
	}
	sigma := BarVolatility(ComputeLogReturns(candles), 0)
	base := candles[anchor].Close
	drift := float64(sign(signal)) * clamp01(confidence) * sigma

	prices := make([]float64, 0, horizon+1)
	prices = append(prices, base)
	for k := 1; k <= horizon; k++ {
		prices = append(prices, base*math.Exp(drift*float64(k)))
	}
	return chart.Forecast{StartIndex: anchor, Prices: prices}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
