package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"FinChart/internal/domain/repository"
	domsvc "FinChart/internal/domain/service"
	"FinChart/internal/handler/api"
	internalrepo "FinChart/internal/repository"
	"FinChart/internal/scheduler"
	icache "FinChart/internal/service/cache"
	svcmetrics "FinChart/internal/service/metrics"
	"FinChart/internal/service/ratelimit"
	"FinChart/internal/series"
	"FinChart/internal/services/prediction"
	"FinChart/internal/usecase"
	pkgch "FinChart/pkg/clickhouse"
	"FinChart/pkg/config"
	xhttp "FinChart/pkg/http"
	pkgkafka "FinChart/pkg/kafka"
	applogger "FinChart/pkg/logger"
	"FinChart/pkg/metrics"
	"FinChart/pkg/server"
)

// SeriesBackend is the configured bar source. Sink is nil for sources that
// cannot store ingested bars.
type SeriesBackend struct {
	Provider repository.SeriesProvider
	Sink     repository.CandleSink
}

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("service", "finchart")), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideClickHouseClient creates a ClickHouse client and its bar tables.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, internalrepo.CandleSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSeriesBackend opens the bar source named by series.source.
func ProvideSeriesBackend(cfg *config.Config, log *applogger.Logger) (*SeriesBackend, func(), error) {
	switch cfg.Series.Source {
	case "clickhouse":
		client, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := internalrepo.NewCHCandleStore(client, repository.NormalizeTimeframe(cfg.Series.Timeframe), log)
		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Warn("clickhouse close error", applogger.Error(err))
			}
		}
		return &SeriesBackend{Provider: store, Sink: store}, cleanup, nil
	case "sqlite":
		store, err := internalrepo.NewSQLiteCandleStore(cfg.SQLite.Path, log)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				log.Warn("sqlite close error", applogger.Error(err))
			}
		}
		return &SeriesBackend{Provider: store, Sink: store}, cleanup, nil
	default:
		return &SeriesBackend{Provider: series.NewRandomWalk(cfg.Chart.Seed)}, func() {}, nil
	}
}

// ProvideSceneCache creates the render cache for cache.backend. Redis is
// fronted by an in-process layer.
func ProvideSceneCache(cfg *config.Config, log *applogger.Logger) (icache.BytesCache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return icache.NewTTLCache(), func() {}, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   "finchart:",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	layered := icache.NewLayeredCache(rc)
	cleanup := func() {
		if err := layered.Close(); err != nil {
			log.Warn("redis close error", applogger.Error(err))
		}
	}
	return layered, cleanup, nil
}

// ProvidePredictor returns nil when no prediction service is configured.
func ProvidePredictor(cfg *config.Config, log *applogger.Logger) domsvc.Predictor {
	if cfg.Prediction.BaseURL == "" {
		return nil
	}
	return prediction.NewClient(cfg.Prediction.BaseURL, cfg.Prediction.Timeout,
		prediction.WithRetries(cfg.Prediction.Retries),
		prediction.WithLogger(log),
	)
}

// ProvideRenderPublisher publishes scene events to Kafka when enabled.
func ProvideRenderPublisher(cfg *config.Config, log *applogger.Logger) (repository.RenderPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopRenderPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaRenderPublisher(producer, cfg.Kafka.RenderTopic)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pub, cleanup, nil
}

func ProvideChartUseCase(
	cfg *config.Config,
	backend *SeriesBackend,
	predictor domsvc.Predictor,
	cache icache.BytesCache,
	pub repository.RenderPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ChartUseCase {
	opts := []usecase.ChartOption{
		usecase.WithCache(cache, cfg.Cache.TTL),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithLogger(log),
		usecase.WithHorizon(cfg.Chart.ForecastHorizon),
		usecase.WithMaxPoints(cfg.Chart.MaxPoints),
		usecase.WithGrid(!cfg.Chart.DisableGrid),
	}
	if predictor != nil {
		opts = append(opts, usecase.WithPredictor(predictor))
	}
	return usecase.NewChartUseCase(backend.Provider, opts...)
}

func ProvideSessionUseCase(charts *usecase.ChartUseCase, log *applogger.Logger) *usecase.SessionUseCase {
	return usecase.NewSessionUseCase(charts, 0, log)
}

// ProvideHTTPHandlers lists every route group served by the app.
func ProvideHTTPHandlers(
	cfg *config.Config,
	log *applogger.Logger,
	charts *usecase.ChartUseCase,
	sessions *usecase.SessionUseCase,
	predictor domsvc.Predictor,
) []xhttp.Handler {
	limit := api.RateLimit{
		Capacity:  float64(cfg.Prediction.RateLimit.Capacity),
		PerSecond: cfg.Prediction.RateLimit.PerSecond,
	}
	return []xhttp.Handler{
		api.NewChartEchoHandler(log, charts, predictor, ratelimit.New(), limit),
		api.NewSessionsEchoHandler(log, sessions),
	}
}

func ProvideHTTPServer(cfg *config.Config, log *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(log, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideIngestHandler returns nil when there is no sink to write bars into.
func ProvideIngestHandler(cfg *config.Config, backend *SeriesBackend, m repository.Metrics, log *applogger.Logger) pkgkafka.MessageHandler {
	if !cfg.Kafka.Enabled || backend.Sink == nil {
		return nil
	}
	return usecase.NewIngestHandler(cfg.Kafka.IngestTopic, backend.Sink, m, log)
}

// ProvideKafkaConsumer creates the ingest consumer, or nil when ingest is off.
func ProvideKafkaConsumer(cfg *config.Config, ingest pkgkafka.MessageHandler, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if ingest == nil {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideScheduler returns nil when the cache warmer is disabled.
func ProvideScheduler(cfg *config.Config, charts *usecase.ChartUseCase, log *applogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	s := scheduler.New(context.Background(), charts, scheduler.Job{
		Symbols: cfg.Scheduler.Symbols,
		N:       cfg.Chart.Points,
	}, log)
	if err := s.Register(cfg.Scheduler.Spec); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	ingest pkgkafka.MessageHandler,
	sched *scheduler.Scheduler,
) *server.App {
	return server.New(cfg, log, httpServer, consumer, ingest, sched)
}
