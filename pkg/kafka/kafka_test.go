package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "FinChart/pkg/logger"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type countingHandler struct {
	topic string
	fails int
	calls int
}

func (h *countingHandler) Topic() string { return h.topic }

func (h *countingHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	if h.calls <= h.fails {
		return errors.New("transient")
	}
	return nil
}

func testConsumer(retries int) (*Consumer, *fakeReader, *fakeWriter) {
	cfg := &ConsumerConfig{
		GroupID:     "test",
		WorkerCount: 1,
		BufferSize:  1,
		RetryMax:    retries,
		BackoffMin:  time.Millisecond,
		BackoffMax:  2 * time.Millisecond,
		DLQTopic:    "bars.dlq",
	}
	c := newConsumer(cfg, applogger.Nop())
	r := &fakeReader{}
	w := &fakeWriter{}
	c.readers["bars"] = r
	c.dlq = w
	return c, r, w
}

func TestProducerEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")
	require.NoError(t, p.Publish(context.Background(), "scenes", []byte("AAPL"), map[string]int{"points": 30}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "scenes", w.msgs[0].Topic)
	assert.Equal(t, []byte("AAPL"), w.msgs[0].Key)

	var v map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &v))
	assert.Equal(t, 30, v["points"])

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), "scenes", nil, "x"))
}

func TestProcessRetriesThenCommits(t *testing.T) {
	c, r, w := testConsumer(3)
	h := &countingHandler{topic: "bars", fails: 2}
	c.RegisterHandler(h)

	c.process(context.Background(), kafka.Message{Topic: "bars", Value: []byte("{}")})
	assert.Equal(t, 3, h.calls)
	assert.Len(t, r.committed, 1)
	assert.Empty(t, w.msgs)
}

func TestProcessParksInDLQ(t *testing.T) {
	c, r, w := testConsumer(1)
	h := &countingHandler{topic: "bars", fails: 10}
	c.RegisterHandler(h)

	c.process(context.Background(), kafka.Message{Topic: "bars", Value: []byte("bad")})
	assert.Equal(t, 2, h.calls)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "bars.dlq", w.msgs[0].Topic)
	assert.Equal(t, "bars", string(w.msgs[0].Headers[0].Value))
	assert.Len(t, r.committed, 1, "committed after parking")
}

func TestProcessWithoutDLQDoesNotCommit(t *testing.T) {
	c, r, _ := testConsumer(0)
	c.dlq = nil
	c.RegisterHandler(&countingHandler{topic: "bars", fails: 10})

	c.process(context.Background(), kafka.Message{Topic: "bars"})
	assert.Empty(t, r.committed)
}

func TestFailedOffsetStallsPartition(t *testing.T) {
	c, r, _ := testConsumer(0)
	c.dlq = nil
	h := &countingHandler{topic: "bars", fails: 1}
	c.RegisterHandler(h)

	c.process(context.Background(), kafka.Message{Topic: "bars", Partition: 2, Offset: 5})
	c.process(context.Background(), kafka.Message{Topic: "bars", Partition: 2, Offset: 6})
	assert.Equal(t, 1, h.calls, "later offsets wait for redelivery")
	assert.Empty(t, r.committed)

	c.process(context.Background(), kafka.Message{Topic: "bars", Partition: 3, Offset: 9})
	require.Len(t, r.committed, 1, "other partitions keep flowing")
	assert.Equal(t, int64(9), r.committed[0].Offset)
}

type cancelingHandler struct {
	cancel context.CancelFunc
	calls  int
}

func (h *cancelingHandler) Topic() string { return "bars" }

func (h *cancelingHandler) Handle(ctx context.Context, _ []byte) error {
	h.calls++
	h.cancel()
	return ctx.Err()
}

func TestProcessDuringShutdownLeavesOffset(t *testing.T) {
	c, r, w := testConsumer(3)
	ctx, cancel := context.WithCancel(context.Background())
	h := &cancelingHandler{cancel: cancel}
	c.RegisterHandler(h)

	c.process(ctx, kafka.Message{Topic: "bars", Offset: 1})
	assert.Equal(t, 1, h.calls)
	assert.Empty(t, w.msgs, "not parked")
	assert.Empty(t, r.committed, "not committed")

	c.process(ctx, kafka.Message{Topic: "bars", Partition: 1, Offset: 2})
	assert.Equal(t, 1, h.calls, "queued messages are skipped once stopped")
	assert.Empty(t, r.committed)
}

func TestPartitionPinnedToOneQueue(t *testing.T) {
	c := newConsumer(&ConsumerConfig{WorkerCount: 3, BufferSize: 1}, applogger.Nop())
	require.Len(t, c.queues, 3)
	assert.Equal(t, c.queueFor(4), c.queueFor(4))
	assert.Equal(t, c.queueFor(1), c.queueFor(4))
	assert.NotEqual(t, c.queueFor(0), c.queueFor(1))
}

func TestStartStop(t *testing.T) {
	c, _, _ := testConsumer(0)
	c.RegisterHandler(&countingHandler{topic: "bars"})
	require.NoError(t, c.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
}

type permanentHandler struct{ calls int }

func (h *permanentHandler) Topic() string { return "bars" }

func (h *permanentHandler) Handle(context.Context, []byte) error {
	h.calls++
	return Permanent(errors.New("bad payload"))
}

func TestProcessPermanentSkipsRetries(t *testing.T) {
	c, r, w := testConsumer(5)
	h := &permanentHandler{}
	c.RegisterHandler(h)

	c.process(context.Background(), kafka.Message{Topic: "bars", Value: []byte("x")})
	assert.Equal(t, 1, h.calls)
	assert.Len(t, w.msgs, 1)
	assert.Len(t, r.committed, 1)
}

func TestConstructorsRequireBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.ErrorIs(t, err, errNoBrokers)
	_, err = NewConsumer(nil, WithConsumerDLQ("bars.dlq"))
	assert.ErrorIs(t, err, errNoBrokers)
}

func TestConsumerOptionsKeepDefaults(t *testing.T) {
	c, err := NewConsumer(nil,
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerGroupID(""),
		WithConsumerWorkers(0),
		WithConsumerRetry(2, 0, time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, "finchart", c.cfg.GroupID)
	assert.Equal(t, 1, c.cfg.WorkerCount)
	assert.Equal(t, 2, c.cfg.RetryMax)
	assert.Equal(t, 100*time.Millisecond, c.cfg.BackoffMin)
	assert.Equal(t, time.Second, c.cfg.BackoffMax)
	assert.Nil(t, c.dlq)

	c, err = NewConsumer(nil, WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerDLQ("bars.dlq"))
	require.NoError(t, err)
	assert.NotNil(t, c.dlq)
	require.NoError(t, c.Stop(context.Background()))
}

func TestProducerConfigBalancer(t *testing.T) {
	cfg := defaultProducerConfig()
	WithBrokers([]string{"localhost:9092"})(cfg)
	w, err := cfg.writer()
	require.NoError(t, err)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)

	WithHashByKey(false)(cfg)
	w, err = cfg.writer()
	require.NoError(t, err)
	assert.IsType(t, &kafka.LeastBytes{}, w.Balancer)
}
