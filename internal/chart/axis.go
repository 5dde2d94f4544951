package chart

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/leekchan/accounting"
)

const (
	tickCount  = 6
	colorAxis  = "#64748B"
	tickLength = 5.0
	labelGap   = 10.0
)

// LabelFormatter renders a tick value as axis text.
type LabelFormatter func(v float64) string

var priceFormat = accounting.DefaultAccounting("$", 0)

// PriceLabel formats a price rounded to whole currency units, e.g. "$1,205".
func PriceLabel(v float64) string { return priceFormat.FormatMoneyFloat64(v) }

// VolumeLabel formats a volume with an SI suffix, e.g. "1.5M".
func VolumeLabel(v float64) string {
	return strings.ReplaceAll(humanize.SIWithDigits(v, 1, ""), " ", "")
}

// Ticks emits six evenly spaced labels across the mapper's domain, bottom to
// top. Each label is right-aligned just left of the content rectangle with a
// short tick mark touching its edge.
func Ticks(m *Mapper, format LabelFormatter) []AxisLabel {
	lo, hi := m.Domain()
	left := m.Viewport().Left()
	out := make([]AxisLabel, 0, tickCount)
	for i := 0; i < tickCount; i++ {
		v := lo + (hi-lo)*float64(i)/float64(tickCount-1)
		y := m.Y(v)
		out = append(out, AxisLabel{
			Value:  v,
			Text:   format(v),
			At:     Point{X: left - labelGap, Y: y},
			Anchor: "end",
			Tick:   [2]Point{{X: left - tickLength, Y: y}, {X: left, Y: y}},
			Color:  colorAxis,
		})
	}
	return out
}
