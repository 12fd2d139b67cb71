package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// SQLiteStore implements DataStore on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS candles (
		symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, date)
	);
	CREATE TABLE IF NOT EXISTS chain_summaries (
		symbol TEXT PRIMARY KEY,
		row_count INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		columns TEXT NOT NULL,
		loaded_at TEXT NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "initializing schema")
	}
	return nil
}

// SaveCandles upserts daily bars for a symbol.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, candles []models.Candle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		return errors.Wrap(err, "preparing candle insert")
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, c.Date.Format(time.DateOnly),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return errors.Wrapf(err, "inserting candle %s %s", symbol, c.Date.Format(time.DateOnly))
		}
	}
	return tx.Commit()
}

// GetCandles returns daily bars in [from, to], ascending by date.
// Zero bounds are open-ended.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	fromStr, toStr := "0000-01-01", "9999-12-31"
	if !from.IsZero() {
		fromStr = from.Format(time.DateOnly)
	}
	if !to.IsZero() {
		toStr = to.Format(time.DateOnly)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date`, symbol, fromStr, toStr)
	if err != nil {
		return nil, errors.Wrap(err, "querying candles")
	}
	defer rows.Close()

	var out []models.Candle
	for rows.Next() {
		var c models.Candle
		var date string
		if err := rows.Scan(&date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, errors.Wrap(err, "scanning candle")
		}
		c.Date, _ = time.ParseInLocation(time.DateOnly, date, time.UTC)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveChainSummary records the latest load of a symbol's chain.
func (s *SQLiteStore) SaveChainSummary(ctx context.Context, summary models.ChainSummary) error {
	cols, err := json.Marshal(summary.Columns)
	if err != nil {
		return errors.Wrap(err, "encoding columns")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chain_summaries (symbol, row_count, start_date, end_date, columns, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			row_count = excluded.row_count, start_date = excluded.start_date, end_date = excluded.end_date,
			columns = excluded.columns, loaded_at = excluded.loaded_at`,
		summary.Symbol, summary.Rows,
		summary.Start.Format(time.DateOnly), summary.End.Format(time.DateOnly),
		string(cols), summary.LoadedAt.UTC().Format(time.RFC3339))
	return errors.Wrap(err, "saving chain summary")
}

// GetChainSummary returns the recorded summary, or ErrDataNotFound.
func (s *SQLiteStore) GetChainSummary(ctx context.Context, symbol string) (*models.ChainSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, row_count, start_date, end_date, columns, loaded_at
		FROM chain_summaries WHERE symbol = ?`, symbol)

	var out models.ChainSummary
	var start, end, cols, loadedAt string
	err := row.Scan(&out.Symbol, &out.Rows, &start, &end, &cols, &loadedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrDataNotFound, "chain summary for %s", symbol)
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning chain summary")
	}
	out.Start, _ = time.ParseInLocation(time.DateOnly, start, time.UTC)
	out.End, _ = time.ParseInLocation(time.DateOnly, end, time.UTC)
	out.LoadedAt, _ = time.Parse(time.RFC3339, loadedAt)
	if err := json.Unmarshal([]byte(cols), &out.Columns); err != nil {
		return nil, errors.Wrap(err, "decoding columns")
	}
	return &out, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
