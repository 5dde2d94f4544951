package chart

import (
	"fmt"
	"math"
)

// Viewport is the pixel canvas a scene is laid out on. Everything data-derived
// is drawn inside the content rectangle left after padding.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// DefaultViewport matches the dashboard chart panel.
var DefaultViewport = Viewport{Width: 800, Height: 400, Padding: 40}

func (v Viewport) ContentWidth() float64  { return v.Width - 2*v.Padding }
func (v Viewport) ContentHeight() float64 { return v.Height - 2*v.Padding }

func (v Viewport) Left() float64   { return v.Padding }
func (v Viewport) Right() float64  { return v.Width - v.Padding }
func (v Viewport) Top() float64    { return v.Padding }
func (v Viewport) Bottom() float64 { return v.Height - v.Padding }

// Validate rejects viewports without a positive content area.
func (v Viewport) Validate() error {
	for _, f := range []float64{v.Width, v.Height, v.Padding} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: viewport has non-finite dimension", ErrInvalidArgument)
		}
	}
	if v.Padding < 0 {
		return fmt.Errorf("%w: negative padding %.1f", ErrInvalidArgument, v.Padding)
	}
	if v.ContentWidth() <= 0 || v.ContentHeight() <= 0 {
		return fmt.Errorf("%w: viewport %.0fx%.0f leaves no content area with padding %.0f",
			ErrInvalidArgument, v.Width, v.Height, v.Padding)
	}
	return nil
}

func (v Viewport) clampX(x float64) float64 { return math.Min(math.Max(x, v.Left()), v.Right()) }
func (v Viewport) clampY(y float64) float64 { return math.Min(math.Max(y, v.Top()), v.Bottom()) }
