package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 800.0, c.Chart.Width)
	assert.Equal(t, "random", c.Series.Source)
	assert.Equal(t, 6, c.Chart.ForecastHorizon)
	assert.Equal(t, ":8080", c.Addr())
}

func TestParseFillsDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: test
chart:
  points: 60
cache:
  ttl: 5s
`))
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 60, c.Chart.Points)
	assert.Equal(t, 5*time.Second, c.Cache.TTL)
	assert.Equal(t, 40.0, c.Chart.Padding)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"source":     "series:\n  source: csv\n",
		"clickhouse": "series:\n  source: clickhouse\n",
		"redis":      "cache:\n  backend: redis\n",
		"viewport":   "chart:\n  width: 60\n  padding: 40\n",
		"kafka":      "kafka:\n  enabled: true\n",
		"points":     "chart:\n  points: 9000\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FINCHART_PORT":  "9090",
		"KAFKA_BROKERS":  "k1:9092,k2:9092",
		"REDIS_ADDR":     "redis:6379",
		"SERIES_SOURCE":  "sqlite",
		"PREDICTION_URL": "http://predict:5000",
	}
	c := Default()
	require.NoError(t, c.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.Equal(t, "sqlite", c.Series.Source)
	assert.Equal(t, "http://predict:5000", c.Prediction.BaseURL)
	require.NoError(t, c.Validate())

	err := c.ApplyEnv(func(k string) string {
		if k == "FINCHART_PORT" {
			return "eighty"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: prod\nserver:\n  port: 8181\n"), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, c.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
