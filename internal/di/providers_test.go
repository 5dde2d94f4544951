package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalrepo "FinChart/internal/repository"
	"FinChart/internal/series"
	"FinChart/pkg/config"
	applogger "FinChart/pkg/logger"
)

func TestSeriesBackendBySource(t *testing.T) {
	cfg := config.Default()
	b, cleanup, err := ProvideSeriesBackend(cfg, applogger.Nop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &series.RandomWalk{}, b.Provider)
	assert.Nil(t, b.Sink)

	cfg.Series.Source = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "bars.db")
	b, cleanup2, err := ProvideSeriesBackend(cfg, applogger.Nop())
	require.NoError(t, err)
	defer cleanup2()
	assert.IsType(t, &internalrepo.SQLiteCandleStore{}, b.Provider)
	assert.NotNil(t, b.Sink)

	candles, err := b.Provider.Series(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestOptionalComponentsAreNilWhenDisabled(t *testing.T) {
	cfg := config.Default()
	log := applogger.Nop()
	b := &SeriesBackend{Provider: series.NewRandomWalk(1)}

	assert.Nil(t, ProvidePredictor(cfg, log))
	assert.Nil(t, ProvideIngestHandler(cfg, b, nil, log))

	c, err := ProvideKafkaConsumer(cfg, nil, log)
	require.NoError(t, err)
	assert.Nil(t, c)

	s, err := ProvideScheduler(cfg, nil, log)
	require.NoError(t, err)
	assert.Nil(t, s)

	pub, cleanup, err := ProvideRenderPublisher(cfg, log)
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, internalrepo.NoopRenderPublisher{}, pub)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	cfg := config.Default()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Symbols = []string{"AAPL"}
	cfg.Scheduler.Spec = "every now and then"
	_, err := ProvideScheduler(cfg, nil, applogger.Nop())
	assert.Error(t, err)
}
