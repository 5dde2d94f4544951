package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWarmer struct {
	mu     sync.Mutex
	warmed []string
	failOn string
}

func (f *fakeWarmer) Warm(_ context.Context, symbol string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if symbol == f.failOn {
		return errors.New("no data")
	}
	f.warmed = append(f.warmed, symbol)
	return nil
}

func TestRunNowContinuesPastFailures(t *testing.T) {
	w := &fakeWarmer{failOn: "BAD"}
	s := New(context.Background(), w, Job{
		Symbols: []string{"AAPL", "BAD", "MSFT"},
		N:       30,
	}, nil)

	s.RunNow()
	assert.Equal(t, []string{"AAPL", "MSFT"}, w.warmed)
}

func TestRegisterValidatesSpec(t *testing.T) {
	s := New(context.Background(), &fakeWarmer{}, Job{}, nil)
	require.NoError(t, s.Register("*/30 * * * * *"))
	assert.Error(t, s.Register("every now and then"))
}
