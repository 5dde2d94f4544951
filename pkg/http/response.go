package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the JSON envelope of every non-image response. Status
// repeats the HTTP status code.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one request field that failed binding or
// validation.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

func envelope(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{Status: status, Message: http.StatusText(status), Data: data})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return envelope(c, http.StatusOK, data)
}

func CreatedResponse(c echo.Context, data interface{}) error {
	return envelope(c, http.StatusCreated, data)
}

func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequestResponse reports request validation failures.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return envelope(c, http.StatusBadRequest, errs)
}

// BlobResponse writes a rendered image. Headers are set before the body.
func BlobResponse(c echo.Context, contentType string, b []byte, headers map[string]string) error {
	for k, v := range headers {
		c.Response().Header().Set(k, v)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, contentType, b)
}

func InternalServerErrorResponse(c echo.Context) error {
	return envelope(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes err with its own status. Errors that are not an
// *AppError become a generic 500 so internal messages do not leak.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return InternalServerErrorResponse(c)
	}
	return envelope(c, appErr.Status, []*AppError{appErr})
}
