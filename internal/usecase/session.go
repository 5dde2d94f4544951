package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"FinChart/internal/chart"
	"FinChart/internal/services/prediction"
	applogger "FinChart/pkg/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// SessionParams opens an interactive chart.
type SessionParams struct {
	Symbol     string
	Projection chart.Projection
	Viewport   chart.Viewport
	N          int
}

// SessionView is what callers see of a session.
type SessionView struct {
	ID              string       `json:"id"`
	Symbol          string       `json:"symbol"`
	N               int          `json:"n"`
	Projection      string       `json:"type"`
	Scene           *chart.Scene `json:"scene"`
	PredictionError string       `json:"prediction_error,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type session struct {
	id     string
	symbol string
	n      int
	ctl    *chart.Controller

	mu        sync.Mutex
	predErr   string
	updatedAt time.Time
}

// SessionUseCase keeps one chart controller per open chart. Each session
// remembers its projection between requests the way a chart widget keeps
// its selector state.
type SessionUseCase struct {
	charts *ChartUseCase
	limit  int
	l      *applogger.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionUseCase(charts *ChartUseCase, limit int, l *applogger.Logger) *SessionUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	if limit <= 0 {
		limit = 1024
	}
	return &SessionUseCase{charts: charts, limit: limit, l: l, sessions: make(map[string]*session)}
}

func (uc *SessionUseCase) Create(ctx context.Context, p SessionParams) (*SessionView, error) {
	p.Symbol = prediction.NormalizeSymbol(p.Symbol)
	if p.N <= 0 || p.N > uc.charts.maxPoints {
		return nil, fmt.Errorf("%w: n must be between 1 and %d", chart.ErrInvalidArgument, uc.charts.maxPoints)
	}
	// Checked again at insert: concurrent creates may pass this one.
	uc.mu.RLock()
	full := len(uc.sessions) >= uc.limit
	uc.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	snap, _, err := uc.charts.load(ctx, p.Symbol, p.N)
	if err != nil {
		return nil, err
	}
	opts, _ := uc.charts.sceneOptions(snap, chart.OverlayForecast)
	ctl, err := chart.NewController(p.Projection, p.Viewport, chart.FromCandles(snap.Candles), opts...)
	if err != nil {
		return nil, err
	}

	s := &session{
		id:        uuid.NewString(),
		symbol:    p.Symbol,
		n:         p.N,
		ctl:       ctl,
		predErr:   snap.PredictionError,
		updatedAt: uc.charts.now().UTC(),
	}
	uc.mu.Lock()
	if len(uc.sessions) >= uc.limit {
		uc.mu.Unlock()
		return nil, ErrTooManySessions
	}
	uc.sessions[s.id] = s
	uc.mu.Unlock()

	uc.l.Info("session.create ok",
		applogger.String("id", s.id),
		applogger.String("symbol", s.symbol),
		applogger.String("projection", p.Projection.String()),
	)
	return s.view(), nil
}

func (uc *SessionUseCase) Get(id string) (*SessionView, error) {
	s, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.view(), nil
}

// Select switches the session's projection. An unknown projection leaves the
// session unchanged.
func (uc *SessionUseCase) Select(id string, p chart.Projection) (*SessionView, error) {
	s, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ctl.Select(p); err != nil {
		return nil, err
	}
	s.touch(uc.charts.now(), nil)
	return s.view(), nil
}

// Refresh reloads the series and prediction, skipping the cache, and
// recomputes the scene under the current projection.
func (uc *SessionUseCase) Refresh(ctx context.Context, id string) (*SessionView, error) {
	s, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}
	snap, err := uc.charts.fetch(ctx, s.symbol, s.n)
	if err != nil {
		return nil, err
	}
	opts, _ := uc.charts.sceneOptions(snap, chart.OverlayForecast)
	if _, err := s.ctl.Refresh(chart.FromCandles(snap.Candles), opts...); err != nil {
		return nil, err
	}
	s.touch(uc.charts.now(), &snap.PredictionError)
	return s.view(), nil
}

func (uc *SessionUseCase) Delete(id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(uc.sessions, id)
	return nil
}

func (uc *SessionUseCase) Len() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.sessions)
}

func (uc *SessionUseCase) lookup(id string) (*session, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	s, ok := uc.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (s *session) touch(now time.Time, predErr *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = now.UTC()
	if predErr != nil {
		s.predErr = *predErr
	}
}

func (s *session) view() *SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &SessionView{
		ID:              s.id,
		Symbol:          s.symbol,
		N:               s.n,
		Projection:      s.ctl.Projection().String(),
		Scene:           s.ctl.Scene(),
		PredictionError: s.predErr,
		UpdatedAt:       s.updatedAt,
	}
}
