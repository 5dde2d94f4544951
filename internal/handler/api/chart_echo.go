package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"FinChart/internal/chart"
	"FinChart/internal/chart/draw"
	"FinChart/internal/domain/models"
	domsvc "FinChart/internal/domain/service"
	svcmetrics "FinChart/internal/service/metrics"
	"FinChart/internal/service/ratelimit"
	"FinChart/internal/usecase"
	xhttp "FinChart/pkg/http"
	xlogger "FinChart/pkg/logger"
)

const headerPredictionError = "X-Prediction-Error"

// RateLimit configures the prediction proxy token bucket, per client IP.
type RateLimit struct {
	Capacity  float64
	PerSecond float64
}

// ChartEchoHandler serves rendered charts and proxies the prediction service.
type ChartEchoHandler struct {
	logger    *xlogger.Logger
	charts    *usecase.ChartUseCase
	predictor domsvc.Predictor
	limiter   *ratelimit.Limiter
	limit     RateLimit
}

func NewChartEchoHandler(logger *xlogger.Logger, charts *usecase.ChartUseCase, predictor domsvc.Predictor, limiter *ratelimit.Limiter, limit RateLimit) *ChartEchoHandler {
	return &ChartEchoHandler{logger: logger, charts: charts, predictor: predictor, limiter: limiter, limit: limit}
}

func (h *ChartEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/chart", h.Chart)
	g.GET("/chart/projections", h.Projections)
	g.GET("/predict", h.Predict)
}

func (h *ChartEchoHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := chart.ParseProjection(req.Projection)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InvalidArgumentError("type", err.Error()))
	}

	res, err := h.charts.Render(c.Request().Context(), usecase.ChartParams{
		Symbol:     req.Symbol,
		Projection: p,
		Viewport:   chart.Viewport{Width: req.Width, Height: req.Height, Padding: req.Padding},
		N:          req.N,
		Overlay:    chart.OverlayMode(req.Overlay),
	})
	if err != nil {
		app := toAppError(err)
		if app.Status >= http.StatusInternalServerError {
			h.logger.Error("chart usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, app)
	}
	if req.Format == "json" {
		return xhttp.SuccessResponse(c, res)
	}

	format, err := draw.ParseFormat(req.Format)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InvalidArgumentError("format", err.Error()))
	}
	var buf bytes.Buffer
	if err := draw.Render(&buf, res.Scene, format, draw.WithTitle(res.Symbol+" "+p.String())); err != nil {
		h.logger.Error("chart draw error", xlogger.String("format", req.Format), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	// Images have no envelope, so the prediction failure travels as a header.
	headers := map[string]string{}
	if res.PredictionError != "" {
		headers[headerPredictionError] = res.PredictionError
	}
	return xhttp.BlobResponse(c, format.ContentType(), buf.Bytes(), headers)
}

// Projections lists the selectable projections with their legends.
func (h *ChartEchoHandler) Projections(c echo.Context) error {
	type projection struct {
		Name   chart.Projection    `json:"type"`
		Legend []chart.LegendEntry `json:"legend"`
	}
	out := make([]projection, 0, len(chart.Projections()))
	for _, p := range chart.Projections() {
		out = append(out, projection{Name: p, Legend: chart.Legend(p)})
	}
	return xhttp.SuccessResponse(c, out)
}

// Predict proxies the prediction service. The answer is passed through
// unchanged; upstream failures become 502 with the upstream body as message.
func (h *ChartEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.limiter != nil && !h.limiter.Allow(c.RealIP(), h.limit.Capacity, h.limit.PerSecond) {
		svcmetrics.PredictionRateLimited.Inc()
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	if h.predictor == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("prediction service is not configured"))
	}

	pred, err := h.predictor.Predict(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Warn("predict upstream error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(err.Error()).WithError(err))
	}
	return c.JSON(http.StatusOK, pred)
}
