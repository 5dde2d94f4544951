package models

// Requests for chart HTTP endpoints. Defined in domain for consistency and reuse.

type ChartRequest struct {
	Symbol     string  `query:"symbol" json:"symbol" default:"AAPL" validate:"required,ticker"`
	Projection string  `query:"type" json:"type" default:"candlestick"`
	Width      float64 `query:"width" json:"width" default:"800" validate:"gt=0,lte=4000"`
	Height     float64 `query:"height" json:"height" default:"400" validate:"gt=0,lte=4000"`
	Padding    float64 `query:"padding" json:"padding" default:"40" validate:"gte=0,lte=500"`
	N          int     `query:"n" json:"n" default:"30" validate:"gte=1,lte=5000"`
	Format     string  `query:"format" json:"format" default:"json" validate:"oneof=json svg png"`
	Overlay    string  `query:"overlay" json:"overlay" default:"forecast" validate:"oneof=forecast fixed none"`
}

type PredictRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"AAPL" validate:"required,ticker"`
}

type CreateSessionRequest struct {
	Symbol     string  `json:"symbol" default:"AAPL" validate:"required,ticker"`
	Projection string  `json:"type" default:"candlestick"`
	Width      float64 `json:"width" default:"800" validate:"gt=0,lte=4000"`
	Height     float64 `json:"height" default:"400" validate:"gt=0,lte=4000"`
	Padding    float64 `json:"padding" default:"40" validate:"gte=0,lte=500"`
	N          int     `json:"n" default:"30" validate:"gte=1,lte=5000"`
}

type SelectProjectionRequest struct {
	ID         string `param:"id" validate:"required,uuid"`
	Projection string `json:"type" validate:"required"`
}

type SessionRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}
