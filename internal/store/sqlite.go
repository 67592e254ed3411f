package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rickgao/congress-tracker/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	politician TEXT NOT NULL,
	chamber TEXT NOT NULL,
	ticker TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	amount REAL NOT NULL,
	range_low REAL NOT NULL,
	range_high REAL NOT NULL,
	amount_bucket TEXT NOT NULL,
	transaction_date TEXT NOT NULL,
	disclosure_date TEXT NOT NULL,
	source_id TEXT NOT NULL,
	source_link TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	UNIQUE (politician, ticker, transaction_date, action, amount_bucket, source_id)
);

CREATE INDEX IF NOT EXISTS idx_trades_politician_date
	ON trades (politician, transaction_date DESC);
CREATE INDEX IF NOT EXISTS idx_trades_ticker_date
	ON trades (ticker, transaction_date DESC);

CREATE TABLE IF NOT EXISTS aggregate_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_at TEXT NOT NULL,
	politician TEXT NOT NULL,
	chamber TEXT NOT NULL,
	trade_count INTEGER NOT NULL,
	total_value REAL NOT NULL,
	distinct_tickers INTEGER NOT NULL,
	last_transaction TEXT NOT NULL,
	sector_counts TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_snapshots_politician_run
	ON aggregate_snapshots (politician, run_at DESC);
`

// SQLiteStore implements Store on a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path.
// ":memory:" is accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single writer at a time; concurrent overlap is tolerated via
	// busy_timeout plus the dedup key.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert attempts to add a trade. A dedup-key collision reports Duplicate
// and performs no mutation.
func (s *SQLiteStore) Insert(ctx context.Context, t model.Trade) (InsertResult, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (politician, chamber, ticker, company, action,
			amount, range_low, range_high, amount_bucket,
			transaction_date, disclosure_date, source_id, source_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		t.Politician, string(t.Chamber), t.Ticker, t.Company, string(t.Action),
		t.Amount, t.RangeLow, t.RangeHigh, t.AmountBucket,
		t.TransactionDate.Format(model.DateFormat),
		t.DisclosureDate.Format(model.DateFormat),
		t.SourceID, t.SourceLink,
	)
	if err != nil {
		return Inserted, fmt.Errorf("insert trade: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Inserted, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// Query returns trades matching the filter, newest transaction first.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]model.Trade, error) {
	var (
		conds []string
		args  []any
	)
	if f.Politician != "" {
		conds = append(conds, "politician = ?")
		args = append(args, f.Politician)
	}
	if f.Ticker != "" {
		conds = append(conds, "ticker = ?")
		args = append(args, strings.ToUpper(f.Ticker))
	}
	if !f.From.IsZero() {
		conds = append(conds, "transaction_date >= ?")
		args = append(args, f.From.Format(model.DateFormat))
	}
	if !f.To.IsZero() {
		conds = append(conds, "transaction_date <= ?")
		args = append(args, f.To.Format(model.DateFormat))
	}
	if f.MinAmount > 0 {
		conds = append(conds, "amount >= ?")
		args = append(args, f.MinAmount)
	}

	query := `SELECT id, politician, chamber, ticker, company, action,
		amount, range_low, range_high, amount_bucket,
		transaction_date, disclosure_date, source_id, source_link
		FROM trades`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY transaction_date DESC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// AllTrades returns every stored trade for aggregation.
func (s *SQLiteStore) AllTrades(ctx context.Context) ([]model.Trade, error) {
	return s.Query(ctx, Filter{})
}

// SaveSnapshots appends one run's aggregate snapshots to the log.
func (s *SQLiteStore) SaveSnapshots(ctx context.Context, snaps []model.PoliticianSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	for _, snap := range snaps {
		sectors, err := json.Marshal(snap.SectorCounts)
		if err != nil {
			return fmt.Errorf("marshal sector counts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO aggregate_snapshots (run_at, politician, chamber,
				trade_count, total_value, distinct_tickers, last_transaction, sector_counts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.RunAt.UTC().Format(time.RFC3339), snap.Politician, string(snap.Chamber),
			snap.TradeCount, snap.TotalValue, snap.DistinctTickers,
			snap.LastTransaction.Format(model.DateFormat), string(sectors),
		); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	return tx.Commit()
}

// LatestSnapshots returns, per politician, the most recent snapshot taken
// strictly before the given time. Politicians with no prior snapshot are
// absent from the map.
func (s *SQLiteStore) LatestSnapshots(ctx context.Context, before time.Time) (map[string]model.PoliticianSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.run_at, s.politician, s.chamber, s.trade_count, s.total_value,
			s.distinct_tickers, s.last_transaction, s.sector_counts
		FROM aggregate_snapshots s
		JOIN (
			SELECT politician, MAX(run_at) AS run_at
			FROM aggregate_snapshots
			WHERE run_at < ?
			GROUP BY politician
		) latest ON s.politician = latest.politician AND s.run_at = latest.run_at`,
		before.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
