package model

import (
	"fmt"
	"time"
)

// DateFormat is the canonical calendar-date layout used throughout.
const DateFormat = "2006-01-02"

// Chamber identifies which house of Congress a politician sits in.
type Chamber string

const (
	ChamberHouse  Chamber = "House"
	ChamberSenate Chamber = "Senate"
)

// TradeAction is the disclosed transaction type.
type TradeAction string

const (
	ActionBuy      TradeAction = "Buy"
	ActionSell     TradeAction = "Sell"
	ActionExchange TradeAction = "Exchange"
)

// Trade represents a single disclosed congressional stock transaction.
//
// Trades are immutable once stored. Disclosures report dollar amounts as a
// range; Amount holds the lower bound of that range and is the representative
// value used everywhere (totals, thresholds). The full range is preserved in
// RangeLow/RangeHigh, and AmountBucket is the canonical range string used in
// the dedup key.
type Trade struct {
	ID              int64       // Store-assigned row ID (0 until inserted)
	Politician      string      // Politician name as disclosed
	Chamber         Chamber     // House or Senate
	Ticker          string      // Uppercase ticker symbol
	Company         string      // Company/asset name (may be empty)
	Action          TradeAction // Buy, Sell, or Exchange
	Amount          float64     // Representative value (lower bound of range)
	RangeLow        float64     // Disclosed range lower bound
	RangeHigh       float64     // Disclosed range upper bound
	AmountBucket    string      // Canonical range string (e.g. "1001-15000")
	TransactionDate time.Time   // Calendar date (UTC midnight)
	DisclosureDate  time.Time   // Calendar date, >= TransactionDate
	SourceID        string      // Upstream record ID, or deterministic synthesized ID
	SourceLink      string      // URL of the filing (may be empty)
}

// DedupKey returns the natural key that identifies the same underlying
// disclosure across repeated fetches.
func (t Trade) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		t.Politician,
		t.Ticker,
		t.TransactionDate.Format(DateFormat),
		t.Action,
		t.AmountBucket,
		t.SourceID,
	)
}

// PoliticianAggregate is a rollup of one politician's stored trading
// activity. It is always derived from the trade store contents, never
// independently mutated.
type PoliticianAggregate struct {
	Politician       string
	Chamber          Chamber
	TradeCount       int
	TotalValue       float64
	DistinctTickers  int
	FirstTransaction time.Time
	LastTransaction  time.Time

	// SectorCounts maps sector name to trade count for trades whose ticker
	// could be classified. Unclassifiable tickers contribute to TradeCount
	// and TotalValue but not here.
	SectorCounts map[string]int
}

// SectorShares returns each sector's share of the politician's classified
// trades, in percent. Empty map when no trade could be classified.
func (a PoliticianAggregate) SectorShares() map[string]float64 {
	total := 0
	for _, n := range a.SectorCounts {
		total += n
	}
	if total == 0 {
		return map[string]float64{}
	}
	shares := make(map[string]float64, len(a.SectorCounts))
	for sector, n := range a.SectorCounts {
		shares[sector] = float64(n) / float64(total) * 100
	}
	return shares
}

// PoliticianSnapshot is one politician's aggregate as recorded at the end of
// a pipeline run. Snapshots form an append-only log keyed by run timestamp
// and feed the sector-concentration comparison on the next run.
type PoliticianSnapshot struct {
	RunAt           time.Time
	Politician      string
	Chamber         Chamber
	TradeCount      int
	TotalValue      float64
	DistinctTickers int
	LastTransaction time.Time
	SectorCounts    map[string]int
}

// SectorShares mirrors PoliticianAggregate.SectorShares.
func (s PoliticianSnapshot) SectorShares() map[string]float64 {
	return PoliticianAggregate{SectorCounts: s.SectorCounts}.SectorShares()
}

// AlertKind identifies the rule that produced an alert event. The numeric
// order is the fixed grouping order for report output.
type AlertKind int

const (
	AlertNewLargeTrade AlertKind = iota
	AlertUnusualActivityVolume
	AlertSectorConcentrationShift
	AlertClusterActivity
)

// String returns the rule name.
func (k AlertKind) String() string {
	switch k {
	case AlertNewLargeTrade:
		return "NewLargeTrade"
	case AlertUnusualActivityVolume:
		return "UnusualActivityVolume"
	case AlertSectorConcentrationShift:
		return "SectorConcentrationShift"
	case AlertClusterActivity:
		return "ClusterActivity"
	default:
		return fmt.Sprintf("AlertKind(%d)", int(k))
	}
}

// AlertEvent is a single alert-worthy finding from one pipeline run. Events
// are not persisted; they exist only to be rendered into the run's report.
type AlertEvent struct {
	Kind        AlertKind
	Politician  string   // Subject politician (empty for cluster events)
	Ticker      string   // Subject ticker (large-trade and cluster events)
	Politicians []string // Cluster events: sorted distinct politicians
	Message     string   // Human-readable description
	Severity    int      // Ordinal 1 (low) to 3 (high)
	Threshold   float64  // The configured value that was crossed
}

// Subject returns the sort key used to order events of equal kind and
// severity: politician name, or ticker for cluster events.
func (e AlertEvent) Subject() string {
	if e.Kind == AlertClusterActivity {
		return e.Ticker
	}
	return e.Politician
}

// RunSummary holds the counters for one pipeline run. It is always reported,
// even when no alert fired, so observers can tell "nothing notable" from
// "did not run".
type RunSummary struct {
	RunAt         time.Time
	From          time.Time // Fetch window start
	To            time.Time // Fetch window end
	Fetched       int       // Raw records returned by upstream
	NewTrades     int       // Trades inserted this run
	Duplicates    int       // Inserts rejected by the dedup key
	Malformed     int       // Raw records skipped as unparseable
	BelowMinimum  int       // Normalized trades under the ingestion minimum
	InsertErrors  int       // Per-record insert failures (run continues)
	TotalNewValue float64   // Sum of Amount over inserted trades
}
