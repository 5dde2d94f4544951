package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordRender("line", 0.002, 48)
	r.RecordRender("line", 0.003, 50)
	r.RecordError("series")
	r.RecordLastClose("AAPL", 101.5)
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.renders.WithLabelValues("line")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("series")))
	assert.Equal(t, 101.5, testutil.ToFloat64(r.lastClose.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cache.WithLabelValues("miss")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
