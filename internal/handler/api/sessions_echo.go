package api

import (
	"github.com/labstack/echo/v4"

	"FinChart/internal/chart"
	"FinChart/internal/domain/models"
	"FinChart/internal/usecase"
	xhttp "FinChart/pkg/http"
	xlogger "FinChart/pkg/logger"
)

// SessionsEchoHandler exposes interactive chart sessions. A session keeps its
// selected projection across requests.
type SessionsEchoHandler struct {
	logger   *xlogger.Logger
	sessions *usecase.SessionUseCase
}

func NewSessionsEchoHandler(logger *xlogger.Logger, sessions *usecase.SessionUseCase) *SessionsEchoHandler {
	return &SessionsEchoHandler{logger: logger, sessions: sessions}
}

func (h *SessionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/sessions")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id/projection", h.Select)
	g.POST("/:id/refresh", h.Refresh)
	g.DELETE("/:id", h.Delete)
}

func (h *SessionsEchoHandler) Create(c echo.Context) error {
	req := &models.CreateSessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := chart.ParseProjection(req.Projection)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InvalidArgumentError("type", err.Error()))
	}
	v, err := h.sessions.Create(c.Request().Context(), usecase.SessionParams{
		Symbol:     req.Symbol,
		Projection: p,
		Viewport:   chart.Viewport{Width: req.Width, Height: req.Height, Padding: req.Padding},
		N:          req.N,
	})
	if err != nil {
		return h.fail(c, "create", err)
	}
	return xhttp.CreatedResponse(c, v)
}

func (h *SessionsEchoHandler) Get(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	v, err := h.sessions.Get(req.ID)
	if err != nil {
		return h.fail(c, "get", err)
	}
	return xhttp.SuccessResponse(c, v)
}

func (h *SessionsEchoHandler) Select(c echo.Context) error {
	req := &models.SelectProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := chart.ParseProjection(req.Projection)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InvalidArgumentError("type", err.Error()))
	}
	v, err := h.sessions.Select(req.ID, p)
	if err != nil {
		return h.fail(c, "select", err)
	}
	return xhttp.SuccessResponse(c, v)
}

func (h *SessionsEchoHandler) Refresh(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	v, err := h.sessions.Refresh(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "refresh", err)
	}
	return xhttp.SuccessResponse(c, v)
}

func (h *SessionsEchoHandler) Delete(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.sessions.Delete(req.ID); err != nil {
		return h.fail(c, "delete", err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *SessionsEchoHandler) fail(c echo.Context, op string, err error) error {
	app := toAppError(err)
	if app.Status >= 500 {
		h.logger.Error("session usecase error", xlogger.String("op", op), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, app)
}
