package chart

import (
	"fmt"

	"github.com/leekchan/accounting"
)

var summaryPrice = accounting.DefaultAccounting("$", 2)

// Summarize builds the headline readout for s, or nil for an empty series.
// Volume is reported only for the volume projection.
func Summarize(s Series, p Projection) *Summary {
	if len(s) == 0 {
		return nil
	}
	first, last := s[0], s[len(s)-1]
	pct := 0.0
	if first.Close != 0 {
		pct = (last.Close - first.Close) / first.Close * 100
	}
	sum := &Summary{
		Last:       last.Close,
		LastText:   summaryPrice.FormatMoneyFloat64(last.Close),
		ChangePct:  pct,
		ChangeText: fmt.Sprintf("%+.2f%%", pct),
	}
	if p == ProjectionVolume {
		sum.Volume = last.Volume
		sum.VolumeText = fmt.Sprintf("%.1fM", last.Volume/1e6)
	}
	return sum
}
