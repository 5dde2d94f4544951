package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinChart/internal/domain/models"
	domrepo "FinChart/internal/domain/repository"
	pkgch "FinChart/pkg/clickhouse"
	applogger "FinChart/pkg/logger"
)

// CandleSchema creates the bar tables read by CHCandleStore.
var CandleSchema = []string{
	`CREATE TABLE IF NOT EXISTS candles_1s (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE = ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS candles_1m (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE = ReplacingMergeTree ORDER BY (symbol, bucket)`,
	`CREATE TABLE IF NOT EXISTS candles_5m (bucket DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE = ReplacingMergeTree ORDER BY (symbol, bucket)`,
}

// CHCandleStore serves series from ClickHouse bar tables.
type CHCandleStore struct {
	db *sql.DB
	tf domrepo.Timeframe
	l  *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, tf domrepo.Timeframe, l *applogger.Logger) *CHCandleStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHCandleStore{db: ch.DB(), tf: tf, l: l}
}

func latestQuery(tf domrepo.Timeframe) string {
	return fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, tf.CandleTable())
}

// Series returns the latest n bars for symbol, oldest first.
func (s *CHCandleStore) Series(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	start := time.Now()
	table := s.tf.CandleTable()
	rows, err := s.db.QueryContext(ctx, latestQuery(s.tf), symbol, n)
	if err != nil {
		s.l.Error("clickhouse series query error",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	out, err := scanCandles(rows, n)
	if err != nil {
		s.l.Error("clickhouse series scan error", applogger.String("table", table), applogger.Error(err))
		return nil, err
	}
	s.l.Debug("clickhouse series ok",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// Append writes bars into the store's table in one batch.
func (s *CHCandleStore) Append(ctx context.Context, candles ...models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (bucket, symbol, open, high, low, close, vol)", s.tf.CandleTable()))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()
	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Bucket, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append candle: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// scanCandles reads rows ordered newest first and returns them oldest first.
func scanCandles(rows *sql.Rows, hint int) ([]models.Candle, error) {
	tmp := make([]models.Candle, 0, hint)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}
