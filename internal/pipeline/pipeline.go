package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rickgao/congress-tracker/internal/aggregate"
	"github.com/rickgao/congress-tracker/internal/alert"
	"github.com/rickgao/congress-tracker/internal/model"
	"github.com/rickgao/congress-tracker/internal/normalize"
	"github.com/rickgao/congress-tracker/internal/report"
	"github.com/rickgao/congress-tracker/internal/store"
)

// State is the driver's position in one run.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateNormalizing
	StatePersisting
	StateAggregating
	StateEvaluating
	StateReporting
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateNormalizing:
		return "normalizing"
	case StatePersisting:
		return "persisting"
	case StateAggregating:
		return "aggregating"
	case StateEvaluating:
		return "evaluating"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FailKind classifies a fatal run failure.
type FailKind int

const (
	// FailFetch: upstream unreachable or rejected; nothing was written.
	FailFetch FailKind = iota
	// FailReport: a downstream stage failed after persistence; inserted
	// trades remain committed.
	FailReport
)

// String returns the failure name.
func (k FailKind) String() string {
	if k == FailReport {
		return "ReportError"
	}
	return "FetchError"
}

// RunError is a fatal error for one run.
type RunError struct {
	Kind FailKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Fetcher supplies raw disclosure records for a date range.
type Fetcher interface {
	FetchDisclosures(ctx context.Context, from, to time.Time) ([]normalize.Record, error)
}

// Config holds the pipeline settings for a driver.
type Config struct {
	LookbackDays       int
	MinTradeAmount     float64
	TopPoliticianCount int
	OutputPath         string
	Thresholds         alert.Thresholds
}

// Driver orchestrates one run: fetch, normalize, dedup-insert, aggregate,
// evaluate, format, write the output artifact. A driver executes one run at
// a time; overlapping processes are tolerated because inserts are
// idempotent by dedup key.
type Driver struct {
	cfg       Config
	fetcher   Fetcher
	store     store.Store
	formatter *report.Formatter
	classify  aggregate.Classifier
	logger    *slog.Logger

	state State
	now   func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		d.now = now
	}
}

// New creates a Driver.
func New(cfg Config, fetcher Fetcher, st store.Store, formatter *report.Formatter, classify aggregate.Classifier, opts ...Option) *Driver {
	d := &Driver{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     st,
		formatter: formatter,
		classify:  classify,
		logger:    slog.Default(),
		state:     StateIdle,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the driver's current state.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) setState(s State) {
	d.state = s
	d.logger.Debug("state transition", "state", s.String())
}

// Run executes one full pipeline pass. On failure the returned error is a
// *RunError and a failure report replaces the output artifact; persisted
// trades are never rolled back by downstream failures.
func (d *Driver) Run(ctx context.Context) (*model.RunSummary, error) {
	runAt := d.now().UTC()
	sum := &model.RunSummary{
		RunAt: runAt,
		From:  runAt.AddDate(0, 0, -d.cfg.LookbackDays).Truncate(24 * time.Hour),
		To:    runAt.Truncate(24 * time.Hour),
	}

	d.logger.Info("run starting",
		"from", sum.From.Format(model.DateFormat),
		"to", sum.To.Format(model.DateFormat),
	)

	// Fetch. Failure here is fatal with no partial state written.
	d.setState(StateFetching)
	raw, err := d.fetcher.FetchDisclosures(ctx, sum.From, sum.To)
	if err != nil {
		return sum, d.fail(sum, &RunError{Kind: FailFetch, Err: err})
	}
	sum.Fetched = len(raw)

	// Normalize. One malformed record is skipped and counted, never fatal:
	// upstream data is not under our control.
	d.setState(StateNormalizing)
	trades := make([]model.Trade, 0, len(raw))
	for _, rec := range raw {
		t, err := normalize.Normalize(rec)
		if err != nil {
			var mErr *normalize.MalformedRecordError
			if errors.As(err, &mErr) {
				sum.Malformed++
				d.logger.Warn("skipping malformed record", "err", err, "politician", rec.Politician)
				continue
			}
			return sum, d.fail(sum, &RunError{Kind: FailFetch, Err: err})
		}
		if t.Amount < d.cfg.MinTradeAmount {
			sum.BelowMinimum++
			continue
		}
		trades = append(trades, t)
	}

	// Persist. Duplicates are the expected idempotency signal; a single
	// insert failure does not abort the rest of the batch.
	d.setState(StatePersisting)
	var newTrades []model.Trade
	for _, t := range trades {
		res, err := d.store.Insert(ctx, t)
		if err != nil {
			sum.InsertErrors++
			d.logger.Error("insert failed", "err", err, "dedup_key", t.DedupKey())
			continue
		}
		if res == store.Duplicate {
			sum.Duplicates++
			continue
		}
		sum.NewTrades++
		sum.TotalNewValue += t.Amount
		newTrades = append(newTrades, t)
	}

	// Aggregate over everything persisted.
	d.setState(StateAggregating)
	all, err := d.store.AllTrades(ctx)
	if err != nil {
		return sum, d.fail(sum, &RunError{Kind: FailReport, Err: err})
	}
	aggs := aggregate.FromTrades(all, d.classify)

	// Evaluate against the prior snapshot log.
	d.setState(StateEvaluating)
	prior, err := d.store.LatestSnapshots(ctx, runAt)
	if err != nil {
		return sum, d.fail(sum, &RunError{Kind: FailReport, Err: err})
	}
	events := alert.Evaluate(alert.Input{
		NewTrades:      newTrades,
		Aggregates:     aggs,
		PriorSnapshots: prior,
		WindowDays:     d.cfg.LookbackDays,
	}, d.cfg.Thresholds)

	// Report and record this run's snapshots for the next one.
	d.setState(StateReporting)
	var large []model.Trade
	if th := d.cfg.Thresholds.LargeTradeAmount; th > 0 {
		for _, t := range newTrades {
			if t.Amount >= th {
				large = append(large, t)
			}
		}
	}
	text, err := d.formatter.Format(events, *sum, aggs, large)
	if err != nil {
		return sum, d.fail(sum, &RunError{Kind: FailReport, Err: err})
	}
	if err := d.writeArtifact(text); err != nil {
		return sum, d.fail(sum, &RunError{Kind: FailReport, Err: err})
	}
	if err := d.store.SaveSnapshots(ctx, aggregate.Snapshots(aggs, runAt)); err != nil {
		return sum, d.fail(sum, &RunError{Kind: FailReport, Err: err})
	}

	d.setState(StateDone)
	d.logger.Info("run complete",
		"fetched", sum.Fetched,
		"new_trades", sum.NewTrades,
		"duplicates", sum.Duplicates,
		"malformed", sum.Malformed,
		"below_minimum", sum.BelowMinimum,
		"total_value", sum.TotalNewValue,
		"alerts", len(events),
	)

	return sum, nil
}

// fail marks the run failed and replaces the output artifact with a
// distinct failure report, so observers never mistake a failed run for a
// quiet one.
func (d *Driver) fail(sum *model.RunSummary, runErr *RunError) error {
	d.setState(StateFailed)
	d.logger.Error("run failed", "kind", runErr.Kind.String(), "err", runErr.Err)

	if d.formatter != nil {
		if err := d.writeArtifact(d.formatter.FormatFailure(*sum, runErr)); err != nil {
			d.logger.Error("failed to write failure report", "err", err)
		}
	}
	return runErr
}

// writeArtifact overwrites the output file; consumers always see only the
// latest run.
func (d *Driver) writeArtifact(text string) error {
	if dir := filepath.Dir(d.cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(d.cfg.OutputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output artifact: %w", err)
	}
	return nil
}
