package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.internal"),
		WithPort(8123),
		WithDatabase("market"),
		WithCredentials("reader", "secret"),
		WithHTTP(true),
		WithMaxExecutionTime(30 * time.Second),
	} {
		opt(cfg)
	}

	opts := driverOptions(cfg)
	assert.Equal(t, []string{"ch.internal:8123"}, opts.Addr)
	assert.Equal(t, "market", opts.Auth.Database)
	assert.Equal(t, "reader", opts.Auth.Username)
	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	require.Error(t, err)
}

func TestDriverOptionsHTTPDefaultPort(t *testing.T) {
	cfg := defaultConfig()
	WithHost("ch.internal")(cfg)
	WithHTTP(true)(cfg)
	WithTimeouts(0, time.Minute)(cfg)

	opts := driverOptions(cfg)
	assert.Equal(t, []string{"ch.internal:8123"}, opts.Addr)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, time.Minute, opts.ReadTimeout)
	assert.Nil(t, opts.Settings)
}
