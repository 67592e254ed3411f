package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rickgao/congress-tracker/internal/model"
)

// rowScanner is the subset of *sql.Rows and pgx.Rows both backends share,
// so trade and snapshot row decoding lives in one place.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTrades(rows rowScanner) ([]model.Trade, error) {
	var trades []model.Trade
	for rows.Next() {
		var (
			t                      model.Trade
			chamber, action        string
			txDate, discDate       string
		)
		if err := rows.Scan(&t.ID, &t.Politician, &chamber, &t.Ticker, &t.Company,
			&action, &t.Amount, &t.RangeLow, &t.RangeHigh, &t.AmountBucket,
			&txDate, &discDate, &t.SourceID, &t.SourceLink); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}

		t.Chamber = model.Chamber(chamber)
		t.Action = model.TradeAction(action)

		var err error
		if t.TransactionDate, err = parseStoredDate(txDate); err != nil {
			return nil, err
		}
		if t.DisclosureDate, err = parseStoredDate(discDate); err != nil {
			return nil, err
		}

		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func scanSnapshots(rows rowScanner) (map[string]model.PoliticianSnapshot, error) {
	snaps := make(map[string]model.PoliticianSnapshot)
	for rows.Next() {
		var (
			s               model.PoliticianSnapshot
			runAt, chamber  string
			lastTx, sectors string
		)
		if err := rows.Scan(&runAt, &s.Politician, &chamber, &s.TradeCount,
			&s.TotalValue, &s.DistinctTickers, &lastTx, &sectors); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		s.Chamber = model.Chamber(chamber)

		var err error
		if s.RunAt, err = time.Parse(time.RFC3339, runAt); err != nil {
			return nil, fmt.Errorf("parse snapshot run_at %q: %w", runAt, err)
		}
		if s.LastTransaction, err = parseStoredDate(lastTx); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sectors), &s.SectorCounts); err != nil {
			return nil, fmt.Errorf("decode sector counts: %w", err)
		}

		snaps[s.Politician] = s
	}
	return snaps, rows.Err()
}

// parseStoredDate accepts both the canonical date layout and timestamp
// forms some drivers return for DATE columns.
func parseStoredDate(s string) (time.Time, error) {
	if len(s) > len(model.DateFormat) {
		s = s[:len(model.DateFormat)]
	}
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return t, nil
}
