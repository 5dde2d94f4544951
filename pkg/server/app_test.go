package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChart/internal/scheduler"
	"FinChart/pkg/config"
	xhttp "FinChart/pkg/http"
	applogger "FinChart/pkg/logger"
)

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = 2 * time.Second
	log := applogger.Nop()

	srv := xhttp.NewServer(log, nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithMetricsPath(""))
	sched := scheduler.New(context.Background(), nil, scheduler.Job{}, log)
	app := New(cfg, log, srv, nil, nil, sched)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}
}

func TestNewDefaultsLogger(t *testing.T) {
	app := New(config.Default(), nil, nil, nil, nil, nil)
	assert.NotNil(t, app.log)
	assert.Nil(t, app.consumer)
	assert.Nil(t, app.scheduler)
}
