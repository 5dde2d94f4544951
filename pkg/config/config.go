package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Chart struct {
		Width           float64 `yaml:"width"`
		Height          float64 `yaml:"height"`
		Padding         float64 `yaml:"padding"`
		Projection      string  `yaml:"projection"`
		Points          int     `yaml:"points"`
		MaxPoints       int     `yaml:"max_points"`
		Seed            int64   `yaml:"seed"`
		ForecastHorizon int     `yaml:"forecast_horizon"`
		DisableGrid     bool    `yaml:"disable_grid"`
	} `yaml:"chart"`
	Series struct {
		Source    string `yaml:"source"` // random, clickhouse, sqlite
		Timeframe string `yaml:"timeframe"`
	} `yaml:"series"`
	Prediction struct {
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		Retries   int           `yaml:"retries"`
		RateLimit struct {
			Capacity  int     `yaml:"capacity"`
			PerSecond float64 `yaml:"per_second"`
		} `yaml:"rate_limit"`
	} `yaml:"prediction"`
	Cache struct {
		Backend  string        `yaml:"backend"` // memory, redis
		TTL      time.Duration `yaml:"ttl"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RenderTopic  string   `yaml:"render_topic"`
		IngestTopic  string   `yaml:"ingest_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchSize    int           `yaml:"batch_size"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Scheduler struct {
		Enabled bool     `yaml:"enabled"`
		Spec    string   `yaml:"spec"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"scheduler"`
}

// Default returns a configuration that runs standalone: random-walk series,
// in-memory cache, no Kafka, no scheduler.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment. getenv is injectable for tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("FINCHART_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("FINCHART_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FINCHART_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("SERIES_SOURCE"); v != "" {
		c.Series.Source = v
	}
	if v := getenv("PREDICTION_URL"); v != "" {
		c.Prediction.BaseURL = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
		c.Cache.Backend = "redis"
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	setString(&c.Environment, "development")
	setString(&c.Log.Level, "info")
	setString(&c.Log.Format, "json")
	setString(&c.Log.Output, "stdout")

	setInt(&c.Server.Port, 8080)
	setDuration(&c.Server.ReadTimeout, 10*time.Second)
	setDuration(&c.Server.WriteTimeout, 30*time.Second)
	setDuration(&c.Server.ShutdownTimeout, 15*time.Second)
	setString(&c.Metrics.Path, "/metrics")

	setFloat(&c.Chart.Width, 800)
	setFloat(&c.Chart.Height, 400)
	setFloat(&c.Chart.Padding, 40)
	setString(&c.Chart.Projection, "candlestick")
	setInt(&c.Chart.Points, 30)
	setInt(&c.Chart.MaxPoints, 5000)
	setInt(&c.Chart.ForecastHorizon, 6)

	setString(&c.Series.Source, "random")
	setString(&c.Series.Timeframe, "1m")

	setDuration(&c.Prediction.Timeout, 10*time.Second)
	setInt(&c.Prediction.RateLimit.Capacity, 10)
	setFloat(&c.Prediction.RateLimit.PerSecond, 1)

	setString(&c.Cache.Backend, "memory")
	setDuration(&c.Cache.TTL, 30*time.Second)

	setString(&c.Kafka.RenderTopic, "chart.scene.rendered")
	setString(&c.Kafka.IngestTopic, "chart.bars")
	setInt(&c.Kafka.RequiredAcks, -1)
	setString(&c.Kafka.Compression, "snappy")
	setInt(&c.Kafka.Producer.MaxAttempts, 5)
	setInt(&c.Kafka.Producer.BatchSize, 100)
	setDuration(&c.Kafka.Producer.BatchTimeout, 50*time.Millisecond)
	setDuration(&c.Kafka.Producer.WriteTimeout, 10*time.Second)
	setString(&c.Kafka.Consumer.GroupID, "finchart-ingest")
	setInt(&c.Kafka.Consumer.Workers, 4)
	setInt(&c.Kafka.Consumer.RetryMax, 3)
	setDuration(&c.Kafka.Consumer.BackoffMin, 100*time.Millisecond)
	setDuration(&c.Kafka.Consumer.BackoffMax, 5*time.Second)

	setInt(&c.ClickHouse.Port, 9000)
	setString(&c.ClickHouse.Database, "default")
	setDuration(&c.ClickHouse.DialTimeout, 5*time.Second)
	setDuration(&c.ClickHouse.ReadTimeout, 30*time.Second)

	setString(&c.SQLite.Path, "data/finchart.db")
	setString(&c.Scheduler.Spec, "*/30 * * * * *")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Chart.Width <= 2*c.Chart.Padding || c.Chart.Height <= 2*c.Chart.Padding || c.Chart.Padding < 0 {
		return fmt.Errorf("chart viewport %.0fx%.0f with padding %.0f has no content area",
			c.Chart.Width, c.Chart.Height, c.Chart.Padding)
	}
	if c.Chart.Points < 1 || c.Chart.Points > c.Chart.MaxPoints {
		return fmt.Errorf("chart.points must be in [1, %d], got %d", c.Chart.MaxPoints, c.Chart.Points)
	}
	if c.Chart.ForecastHorizon < 0 {
		return fmt.Errorf("chart.forecast_horizon cannot be negative")
	}
	switch c.Series.Source {
	case "random", "sqlite":
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for series.source=clickhouse")
		}
	default:
		return fmt.Errorf("series.source must be 'random', 'clickhouse' or 'sqlite', got '%s'", c.Series.Source)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr is required for cache.backend=redis")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && len(c.Scheduler.Symbols) == 0 {
		return fmt.Errorf("scheduler.symbols cannot be empty when the scheduler is enabled")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func setString(p *string, v string) {
	if *p == "" {
		*p = v
	}
}

func setInt(p *int, v int) {
	if *p == 0 {
		*p = v
	}
}

func setFloat(p *float64, v float64) {
	if *p == 0 {
		*p = v
	}
}

func setDuration(p *time.Duration, v time.Duration) {
	if *p == 0 {
		*p = v
	}
}
