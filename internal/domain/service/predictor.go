package service

import (
	"context"

	"FinChart/internal/domain/models"
)

// Predictor fetches the directional signal for a symbol from the external
// prediction model.
type Predictor interface {
	Predict(ctx context.Context, symbol string) (models.Prediction, error)
}
