package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	applogger "FinChart/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Permanent marks a handler error as not worth retrying, such as a payload
// that fails to decode. The message goes straight to the DLQ.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer fans messages from one reader per topic out to a worker pool.
// Every partition is pinned to one worker queue, so its messages are handled
// and committed in offset order. An offset is committed after the handler
// succeeds or the message has been parked in the DLQ. A message that can be
// neither handled nor parked stalls its partition: later offsets are not
// committed, so everything from it on is redelivered after a restart.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *applogger.Logger
	handlers map[string]MessageHandler
	readers  map[string]messageReader
	dlq      messageWriter
	queues   []chan kafka.Message
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	stallMu sync.Mutex
	stalled map[string]bool
}

// NewConsumer creates a consumer. Handlers must be registered before Start.
func NewConsumer(log *applogger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := defaultConsumerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errNoBrokers
	}
	if log == nil {
		log = applogger.Nop()
	}

	c := newConsumer(cfg, log)
	if w := cfg.dlqWriter(); w != nil {
		c.dlq = w
	}
	return c, nil
}

func newConsumer(cfg *ConsumerConfig, log *applogger.Logger) *Consumer {
	initConsumerMetrics()
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	queues := make([]chan kafka.Message, cfg.WorkerCount)
	for i := range queues {
		queues[i] = make(chan kafka.Message, cfg.BufferSize)
	}
	return &Consumer{
		cfg:      cfg,
		log:      log,
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]messageReader),
		queues:   queues,
		stalled:  make(map[string]bool),
	}
}

// RegisterHandler registers a message handler for its topic. A second handler
// for the same topic is ignored.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("kafka.consumer duplicate handler", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start opens a reader per registered topic and starts the workers.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for topic := range c.handlers {
		if _, ok := c.readers[topic]; !ok {
			c.readers[topic] = c.cfg.reader(topic)
		}
	}

	var fetchers sync.WaitGroup
	for topic, reader := range c.readers {
		fetchers.Add(1)
		go func(topic string, r messageReader) {
			defer fetchers.Done()
			c.fetch(ctx, topic, r)
		}(topic, reader)
	}
	for _, q := range c.queues {
		c.wg.Add(1)
		go c.work(ctx, q)
	}
	// Workers drain their queues once every fetcher has returned.
	go func() {
		fetchers.Wait()
		for _, q := range c.queues {
			close(q)
		}
	}()

	c.log.Info("kafka.consumer started",
		applogger.Int("topics", len(c.readers)),
		applogger.Int("workers", c.cfg.WorkerCount),
	)
	return nil
}

// Stop cancels fetching, waits for in-flight messages and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			err = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		case <-done:
		}
		for topic, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.log.Warn("kafka.consumer close reader", applogger.String("topic", topic), applogger.Error(cerr))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
	})
	return err
}

func (c *Consumer) fetch(ctx context.Context, topic string, r messageReader) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("kafka.consumer fetch error", applogger.String("topic", topic), applogger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.BackoffMin):
			}
			continue
		}
		if msg.Topic == "" {
			msg.Topic = topic
		}
		q := c.queueFor(msg.Partition)
		select {
		case q <- msg:
			consumerQueueDepth.WithLabelValues(topic).Set(float64(len(q)))
		case <-ctx.Done():
			return
		}
	}
}

// queueFor pins a partition to one worker.
func (c *Consumer) queueFor(partition int) chan kafka.Message {
	if partition < 0 {
		partition = -partition
	}
	return c.queues[partition%len(c.queues)]
}

func (c *Consumer) work(ctx context.Context, q <-chan kafka.Message) {
	defer c.wg.Done()
	for msg := range q {
		c.process(ctx, msg)
	}
}

// process handles one message with retries, parks it in the DLQ when retries
// run out and commits when it is safe to move on. Messages still queued when
// the consumer stops are left uncommitted for redelivery.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	handler, ok := c.handlers[msg.Topic]
	if !ok {
		return
	}
	key := partitionKey(msg.Topic, msg.Partition)
	if ctx.Err() != nil || c.isStalled(key) {
		return
	}

	start := time.Now()
	err := backoff.Retry(func() error {
		return c.safeHandle(ctx, handler, msg.Value)
	}, backoff.WithContext(backoff.WithMaxRetries(c.backoff(), uint64(c.cfg.RetryMax)), ctx))
	consumerHandleLatency.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			// Shutting down: the failure says nothing about the message.
			c.stall(key)
			return
		}
		consumerFailures.WithLabelValues(msg.Topic).Inc()
		c.log.Error("kafka.consumer handle failed",
			applogger.String("topic", msg.Topic),
			applogger.Int("partition", msg.Partition),
			applogger.Int64("offset", msg.Offset),
			applogger.Error(err),
		)
		if c.toDLQ(ctx, msg) != nil {
			c.stall(key)
			c.log.Error("kafka.consumer partition stalled until restart",
				applogger.String("topic", msg.Topic),
				applogger.Int("partition", msg.Partition),
				applogger.Int64("offset", msg.Offset),
			)
			return
		}
	}
	if r := c.readers[msg.Topic]; r != nil {
		if cerr := r.CommitMessages(context.WithoutCancel(ctx), msg); cerr != nil {
			c.log.Warn("kafka.consumer commit failed", applogger.String("topic", msg.Topic), applogger.Error(cerr))
		}
	}
}

func (c *Consumer) safeHandle(ctx context.Context, h MessageHandler, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = backoff.Permanent(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return h.Handle(ctx, data)
}

func (c *Consumer) toDLQ(ctx context.Context, msg kafka.Message) error {
	if c.dlq == nil || c.cfg.DLQTopic == "" {
		return errors.New("no dlq configured")
	}
	err := c.dlq.WriteMessages(context.WithoutCancel(ctx), kafka.Message{
		Topic:   c.cfg.DLQTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "source_topic", Value: []byte(msg.Topic)}},
	})
	if err != nil {
		c.log.Error("kafka.consumer dlq write failed", applogger.String("dlq", c.cfg.DLQTopic), applogger.Error(err))
	}
	return err
}

func (c *Consumer) backoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BackoffMin
	b.MaxInterval = c.cfg.BackoffMax
	b.MaxElapsedTime = 0
	return b
}

func partitionKey(topic string, partition int) string {
	return fmt.Sprintf("%s/%d", topic, partition)
}

func (c *Consumer) stall(key string) {
	c.stallMu.Lock()
	c.stalled[key] = true
	c.stallMu.Unlock()
}

func (c *Consumer) isStalled(key string) bool {
	c.stallMu.Lock()
	defer c.stallMu.Unlock()
	return c.stalled[key]
}

var (
	consumerOnce          sync.Once
	consumerQueueDepth    *prometheus.GaugeVec
	consumerHandleLatency *prometheus.HistogramVec
	consumerFailures      *prometheus.CounterVec
)

func initConsumerMetrics() {
	consumerOnce.Do(func() {
		consumerQueueDepth = promauto.NewGaugeVec(
			prometheus.GaugeOpts{Name: "finchart_kafka_consumer_queue_depth", Help: "Messages waiting for a worker"},
			[]string{"topic"},
		)
		consumerHandleLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{Name: "finchart_kafka_consumer_handle_seconds", Help: "Handling time per message including retries"},
			[]string{"topic"},
		)
		consumerFailures = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "finchart_kafka_consumer_failures_total", Help: "Messages whose retries ran out"},
			[]string{"topic"},
		)
	})
}
