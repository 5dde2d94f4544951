package chart

// Legend returns the swatches for p. It depends only on the projection, never
// on data, and always ends with the prediction overlay entry.
func Legend(p Projection) []LegendEntry {
	var out []LegendEntry
	switch p {
	case ProjectionCandlestick:
		out = append(out,
			LegendEntry{Swatch: Swatch{Shape: SwatchSquare, Style: Style{Fill: colorBullish}}, Text: "Bullish"},
			LegendEntry{Swatch: Swatch{Shape: SwatchSquare, Style: Style{Fill: colorBearish}}, Text: "Bearish"},
		)
	case ProjectionLine:
		out = append(out, LegendEntry{
			Swatch: Swatch{Shape: SwatchLine, Style: Style{Stroke: colorLine, StrokeWidth: 2}},
			Text:   "Price Movement",
		})
	case ProjectionArea:
		out = append(out, LegendEntry{
			Swatch: Swatch{Shape: SwatchSquare, Style: Style{
				Fill: colorArea, FillOpacity: areaFillOpacity, Stroke: colorArea, StrokeWidth: 1,
			}},
			Text: "Price Trend",
		})
	case ProjectionVolume:
		out = append(out, LegendEntry{
			Swatch: Swatch{Shape: SwatchSquare, Style: Style{Fill: colorVolume}},
			Text:   "Volume",
		})
	}
	return append(out, LegendEntry{
		Swatch: Swatch{Shape: SwatchLine, Style: Style{
			Stroke: colorOverlay, StrokeWidth: 2, Dash: append([]float64(nil), overlayDash...),
		}},
		Text: "CNN Prediction",
	})
}
