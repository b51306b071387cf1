package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite"

	"StockLab/internal/model"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so readers can query history while serve mode writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			benchmark  TEXT,
			start_date TEXT,
			end_date   TEXT,
			value      REAL,
			mean       REAL,
			points     INTEGER,
			chart_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind_ts ON analysis_runs(kind, timestamp)`,

		`CREATE TABLE IF NOT EXISTS indicator_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			current_price REAL,
			sma           REAL,
			sma_period    INTEGER,
			rsi           REAL,
			high_52w      REAL,
			low_52w       REAL,
			high_30d      REAL,
			low_30d       REAL,
			position_52w  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON indicator_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS sentiment_scores (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			ticker        TEXT NOT NULL,
			mean_compound REAL,
			headlines     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sentiment_ts ON sentiment_scores(timestamp)`,

		`CREATE TABLE IF NOT EXISTS portfolio_allocations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			strategy   TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			weight     REAL,
			shares     INTEGER,
			ret        REAL,
			volatility REAL,
			sharpe     REAL,
			leftover   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alloc_ts ON portfolio_allocations(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(timestamp, kind, symbol, benchmark, start_date, end_date, value, mean, points, chart_path)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), run.Kind, run.Symbol, run.Benchmark, run.Start, run.End,
		nullable(run.Value), nullable(run.Mean), run.Points, run.ChartPath,
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshot(ind *model.Indicators) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO indicator_snapshots
		(timestamp, symbol, current_price, sma, sma_period, rsi,
		 high_52w, low_52w, high_30d, low_30d, position_52w)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), ind.Symbol, ind.CurrentPrice, ind.SMA, ind.SMAPeriod, ind.RSI,
		ind.High52w, ind.Low52w, ind.High30d, ind.Low30d, ind.Position52w,
	)
	return err
}

func (r *SQLiteRecorder) RecordSentiment(scores []model.TickerSentiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	now := r.now().Unix()
	for _, s := range scores {
		if _, err := tx.Exec(`INSERT INTO sentiment_scores
			(timestamp, ticker, mean_compound, headlines) VALUES (?,?,?,?)`,
			now, s.Ticker, s.MeanCompound, s.Count,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPortfolio(run *PortfolioRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	now := r.now().Unix()
	perf := run.Allocation.Performance
	leftover := ""
	if run.Discrete != nil {
		leftover = run.Discrete.Leftover.StringFixed(2)
	}
	for i, sym := range run.Allocation.Symbols {
		var shares int64
		if run.Discrete != nil {
			shares = run.Discrete.Shares[sym]
		}
		if _, err := tx.Exec(`INSERT INTO portfolio_allocations
			(timestamp, strategy, symbol, weight, shares, ret, volatility, sharpe, leftover)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			now, run.Strategy, sym, run.Allocation.Weights[i], shares,
			perf.Return, perf.Volatility, perf.Sharpe, leftover,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

// nullable stores NaN as NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
