package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"SignalScanner/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so external readers do not block the scanner.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			scan_type     TEXT NOT NULL,
			label         TEXT,
			total_scanned INTEGER,
			results_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON scan_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_type ON scan_runs(scan_type)`,

		`CREATE TABLE IF NOT EXISTS scan_signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      INTEGER NOT NULL REFERENCES scan_runs(id),
			symbol      TEXT NOT NULL,
			signal      TEXT,
			timeframe   TEXT,
			condition   TEXT,
			values_json TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON scan_signals(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON scan_signals(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(snap *model.LatestSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO scan_runs
		(timestamp, scan_type, label, total_scanned, results_count)
		VALUES (?,?,?,?,?)`,
		snap.CompletedAt.Unix(), string(snap.ScanType), snap.Label,
		snap.TotalScanned, snap.ResultsCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, sig := range snap.Results {
		values, err := json.Marshal(sig.Values)
		if err != nil {
			return fmt.Errorf("marshal values for %s: %w", sig.Symbol, err)
		}
		if _, err := tx.Exec(`INSERT INTO scan_signals
			(run_id, symbol, signal, timeframe, condition, values_json)
			VALUES (?,?,?,?,?,?)`,
			runID, sig.Symbol, string(sig.Signal), sig.Timeframe, sig.Condition, string(values),
		); err != nil {
			return fmt.Errorf("insert signal %s: %w", sig.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	logrus.Info("closing sqlite recorder")
	return r.db.Close()
}
