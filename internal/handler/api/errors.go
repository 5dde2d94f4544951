package api

import (
	"errors"

	"FinChart/internal/chart"
	"FinChart/internal/usecase"
	xhttp "FinChart/pkg/http"
)

// toAppError maps domain errors onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, chart.ErrInvalidArgument):
		return xhttp.InvalidArgumentError("", err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrSessionNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrTooManySessions):
		return xhttp.TooManyRequestsError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
