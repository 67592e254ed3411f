package aggregate

import (
	"context"
	"time"

	"github.com/rickgao/congress-tracker/internal/model"
	"github.com/rickgao/congress-tracker/internal/store"
)

// Classifier resolves a ticker to a sector. Resolution is best-effort; an
// unresolved ticker contributes to count and value totals but not to sector
// figures.
type Classifier interface {
	Classify(ticker string) (string, bool)
}

// Aggregator recomputes per-politician rollups from the trade store. A full
// recompute per run keeps the aggregate a pure function of stored trades.
type Aggregator struct {
	store    store.Store
	classify Classifier
}

// New creates an Aggregator. classify may be nil, in which case no sector
// figures are produced.
func New(st store.Store, classify Classifier) *Aggregator {
	return &Aggregator{store: st, classify: classify}
}

// ComputeAggregates scans the store and returns one aggregate per
// politician. politician narrows the result to a single name when non-empty.
func (a *Aggregator) ComputeAggregates(ctx context.Context, politician string) (map[string]model.PoliticianAggregate, error) {
	trades, err := a.store.Query(ctx, store.Filter{Politician: politician})
	if err != nil {
		return nil, err
	}
	return FromTrades(trades, a.classify), nil
}

// FromTrades computes aggregates from an explicit trade list. Exposed so the
// pipeline and tests can aggregate without re-querying.
func FromTrades(trades []model.Trade, classify Classifier) map[string]model.PoliticianAggregate {
	aggs := make(map[string]model.PoliticianAggregate)
	tickers := make(map[string]map[string]struct{})

	for _, t := range trades {
		agg, ok := aggs[t.Politician]
		if !ok {
			agg = model.PoliticianAggregate{
				Politician:       t.Politician,
				Chamber:          t.Chamber,
				FirstTransaction: t.TransactionDate,
				LastTransaction:  t.TransactionDate,
				SectorCounts:     make(map[string]int),
			}
			tickers[t.Politician] = make(map[string]struct{})
		}

		agg.TradeCount++
		agg.TotalValue += t.Amount
		if t.TransactionDate.Before(agg.FirstTransaction) {
			agg.FirstTransaction = t.TransactionDate
		}
		if t.TransactionDate.After(agg.LastTransaction) {
			agg.LastTransaction = t.TransactionDate
		}

		tickers[t.Politician][t.Ticker] = struct{}{}
		agg.DistinctTickers = len(tickers[t.Politician])

		if classify != nil {
			if sector, ok := classify.Classify(t.Ticker); ok {
				agg.SectorCounts[sector]++
			}
		}

		aggs[t.Politician] = agg
	}

	return aggs
}

// Snapshots converts aggregates into snapshot-log entries for one run.
func Snapshots(aggs map[string]model.PoliticianAggregate, runAt time.Time) []model.PoliticianSnapshot {
	snaps := make([]model.PoliticianSnapshot, 0, len(aggs))
	for _, agg := range aggs {
		snaps = append(snaps, model.PoliticianSnapshot{
			RunAt:           runAt,
			Politician:      agg.Politician,
			Chamber:         agg.Chamber,
			TradeCount:      agg.TradeCount,
			TotalValue:      agg.TotalValue,
			DistinctTickers: agg.DistinctTickers,
			LastTransaction: agg.LastTransaction,
			SectorCounts:    agg.SectorCounts,
		})
	}
	return snaps
}
