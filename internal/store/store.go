package store

import (
	"context"
	"time"

	"github.com/rickgao/congress-tracker/internal/model"
)

// InsertResult reports the outcome of an insert attempt. Duplicate is the
// expected idempotency signal, not an error.
type InsertResult int

const (
	Inserted InsertResult = iota
	Duplicate
)

// String returns the result name.
func (r InsertResult) String() string {
	if r == Duplicate {
		return "duplicate"
	}
	return "inserted"
}

// Filter narrows a trade query. Zero values leave the dimension unbounded.
type Filter struct {
	Politician string
	Ticker     string
	From       time.Time // Transaction date >= From
	To         time.Time // Transaction date <= To
	MinAmount  float64
	Limit      int
}

// Store is the durable table of trades plus the append-only aggregate
// snapshot log. Trades are immutable; there is no update or delete.
//
// Query results are ordered by transaction date descending, ties broken by
// insertion order.
type Store interface {
	Insert(ctx context.Context, t model.Trade) (InsertResult, error)
	Query(ctx context.Context, f Filter) ([]model.Trade, error)
	AllTrades(ctx context.Context) ([]model.Trade, error)

	SaveSnapshots(ctx context.Context, snaps []model.PoliticianSnapshot) error
	LatestSnapshots(ctx context.Context, before time.Time) (map[string]model.PoliticianSnapshot, error)

	Close() error
}
