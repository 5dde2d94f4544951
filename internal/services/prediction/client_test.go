package prediction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "FinChart/pkg/http"
)

func TestPredictDecodesAndFillsAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/predict", r.URL.Path)
		assert.Equal(t, "TSLA", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"symbol":"TSLA","signal":-1,"confidence":0.7,"image_b64":"iVBOR"}`)
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL+"/", time.Second).Predict(context.Background(), " tsla ")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", p.Symbol)
	assert.Equal(t, -1, p.Signal)
	assert.Equal(t, 0.7, p.Confidence)
	assert.Equal(t, "iVBOR", p.ImageB64)
	assert.Equal(t, "SELL", p.Action)
}

func TestPredictDefaultSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultSymbol, r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"signal":1,"confidence":0.9,"action":"BUY"}`)
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, time.Second).Predict(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSymbol, p.Symbol)
	assert.Equal(t, "BUY", p.Action)
}

func TestPredictClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unknown symbol", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, WithRetries(3), WithBackoff(time.Millisecond)).
		Predict(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.Equal(t, "unknown symbol", err.Error())

	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPredictRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "model warming up", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"symbol":"AAPL","signal":0,"confidence":0.5}`)
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, time.Second, WithRetries(3), WithBackoff(time.Millisecond)).
		Predict(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "HOLD", p.Action)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPredictGivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, WithRetries(1), WithBackoff(time.Millisecond)).
		Predict(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
