// Package prediction talks to the external model service that scores a
// symbol and returns a directional signal.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"FinChart/internal/domain/models"
	domsvc "FinChart/internal/domain/service"
	svcmetrics "FinChart/internal/service/metrics"
	xhttp "FinChart/pkg/http"
	applogger "FinChart/pkg/logger"
)

const predictPath = "/api/predict"

// DefaultSymbol is used when a caller sends no symbol.
const DefaultSymbol = "AAPL"

type Option func(*Client)

func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the first retry delay.
func WithBackoff(initial time.Duration) Option {
	return func(c *Client) { c.initial = initial }
}

func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// Client implements domain Predictor over HTTP.
type Client struct {
	baseURL string
	http    *xhttp.Client
	retries int
	initial time.Duration
	l       *applogger.Logger
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: 2,
		initial: 100 * time.Millisecond,
		l:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
	return c
}

// Predict fetches the prediction for symbol. Non-2xx answers come back as
// *xhttp.StatusError whose message is the upstream body; 429 and 5xx answers
// and transport errors are retried.
func (c *Client) Predict(ctx context.Context, symbol string) (models.Prediction, error) {
	symbol = NormalizeSymbol(symbol)
	start := time.Now()

	var out models.Prediction
	op := func() error {
		out = models.Prediction{}
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + predictPath,
			QueryParams: map[string][]string{"symbol": {symbol}},
		}, &out)
		var se *xhttp.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(c.policy(), uint64(c.retries)), ctx))
	elapsed := time.Since(start)
	if err != nil {
		svcmetrics.PredictionLatency.WithLabelValues("error").Observe(elapsed.Seconds())
		svcmetrics.PredictionErrors.WithLabelValues(errorCause(err)).Inc()
		c.l.Warn("prediction.fetch error",
			applogger.String("symbol", symbol),
			applogger.Duration("duration_ms", elapsed),
			applogger.Error(err),
		)
		return models.Prediction{}, err
	}
	svcmetrics.PredictionLatency.WithLabelValues("ok").Observe(elapsed.Seconds())

	if out.Symbol == "" {
		out.Symbol = symbol
	}
	if out.Action == "" {
		out.Action = models.ActionForSignal(out.Signal)
	}
	c.l.Debug("prediction.fetch ok",
		applogger.String("symbol", symbol),
		applogger.Int("signal", out.Signal),
		applogger.Float64("confidence", out.Confidence),
	)
	return out, nil
}

func (c *Client) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxElapsedTime = 0
	return b
}

// NormalizeSymbol upper-cases symbol and applies the default.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return DefaultSymbol
	}
	return symbol
}

func errorCause(err error) string {
	var se *xhttp.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("status_%d", se.Status)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "context"
	default:
		return "transport"
	}
}

var _ domsvc.Predictor = (*Client)(nil)
