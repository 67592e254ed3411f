package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/congress-tracker/internal/model"
)

// PGConfig holds a PostgreSQL connection.
type PGConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg PGConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// Dates are stored as canonical "2006-01-02" text in both backends so the
// scan path is shared; lexicographic order matches chronological order.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id BIGSERIAL PRIMARY KEY,
	politician TEXT NOT NULL,
	chamber TEXT NOT NULL,
	ticker TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	range_low DOUBLE PRECISION NOT NULL,
	range_high DOUBLE PRECISION NOT NULL,
	amount_bucket TEXT NOT NULL,
	transaction_date TEXT NOT NULL,
	disclosure_date TEXT NOT NULL,
	source_id TEXT NOT NULL,
	source_link TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (politician, ticker, transaction_date, action, amount_bucket, source_id)
);

CREATE INDEX IF NOT EXISTS idx_trades_politician_date
	ON trades (politician, transaction_date DESC);
CREATE INDEX IF NOT EXISTS idx_trades_ticker_date
	ON trades (ticker, transaction_date DESC);

CREATE TABLE IF NOT EXISTS aggregate_snapshots (
	id BIGSERIAL PRIMARY KEY,
	run_at TEXT NOT NULL,
	politician TEXT NOT NULL,
	chamber TEXT NOT NULL,
	trade_count INTEGER NOT NULL,
	total_value DOUBLE PRECISION NOT NULL,
	distinct_tickers INTEGER NOT NULL,
	last_transaction TEXT NOT NULL,
	sector_counts TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_snapshots_politician_run
	ON aggregate_snapshots (politician, run_at DESC);
`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection, and applies the schema.
func OpenPostgres(ctx context.Context, cfg PGConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Insert attempts to add a trade. A dedup-key collision reports Duplicate
// and performs no mutation.
func (s *PostgresStore) Insert(ctx context.Context, t model.Trade) (InsertResult, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO trades (politician, chamber, ticker, company, action,
			amount, range_low, range_high, amount_bucket,
			transaction_date, disclosure_date, source_id, source_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
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
	if tag.RowsAffected() == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// Query returns trades matching the filter, newest transaction first.
func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]model.Trade, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Politician != "" {
		conds = append(conds, "politician = "+arg(f.Politician))
	}
	if f.Ticker != "" {
		conds = append(conds, "ticker = "+arg(strings.ToUpper(f.Ticker)))
	}
	if !f.From.IsZero() {
		conds = append(conds, "transaction_date >= "+arg(f.From.Format(model.DateFormat)))
	}
	if !f.To.IsZero() {
		conds = append(conds, "transaction_date <= "+arg(f.To.Format(model.DateFormat)))
	}
	if f.MinAmount > 0 {
		conds = append(conds, "amount >= "+arg(f.MinAmount))
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
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// AllTrades returns every stored trade for aggregation.
func (s *PostgresStore) AllTrades(ctx context.Context) ([]model.Trade, error) {
	return s.Query(ctx, Filter{})
}

// SaveSnapshots appends one run's aggregate snapshots to the log using a
// single batch.
func (s *PostgresStore) SaveSnapshots(ctx context.Context, snaps []model.PoliticianSnapshot) error {
	batch := &pgx.Batch{}
	for _, snap := range snaps {
		sectors, err := json.Marshal(snap.SectorCounts)
		if err != nil {
			return fmt.Errorf("marshal sector counts: %w", err)
		}
		batch.Queue(`
			INSERT INTO aggregate_snapshots (run_at, politician, chamber,
				trade_count, total_value, distinct_tickers, last_transaction, sector_counts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			snap.RunAt.UTC().Format(time.RFC3339), snap.Politician, string(snap.Chamber),
			snap.TradeCount, snap.TotalValue, snap.DistinctTickers,
			snap.LastTransaction.Format(model.DateFormat), string(sectors),
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range snaps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return nil
}

// LatestSnapshots returns, per politician, the most recent snapshot taken
// strictly before the given time.
func (s *PostgresStore) LatestSnapshots(ctx context.Context, before time.Time) (map[string]model.PoliticianSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (politician) run_at, politician, chamber, trade_count,
			total_value, distinct_tickers, last_transaction, sector_counts
		FROM aggregate_snapshots
		WHERE run_at < $1
		ORDER BY politician, run_at DESC`,
		before.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
