package alert

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rickgao/congress-tracker/internal/model"
)

// Thresholds configures the alert rules. Each rule is independently
// toggled.
type Thresholds struct {
	// LargeTradeAmount is the minimum dollar amount for a NewLargeTrade
	// event. Distinct from (and at least) the ingestion minimum.
	LargeTradeAmount float64

	// VolumeMultiplier flags a politician whose trade count this window
	// exceeds their historical per-window average by this factor.
	VolumeMultiplier float64

	// SectorShiftPoints is the percentage-point change in one sector's
	// share that triggers SectorConcentrationShift.
	SectorShiftPoints float64

	// ClusterMinPoliticians is the minimum number of distinct politicians
	// trading the same ticker in one run for ClusterActivity.
	ClusterMinPoliticians int

	OnLargeTrades   bool
	OnUnusualVolume bool
	OnSectorChanges bool
	OnClusters      bool
}

// Input carries everything one evaluation needs. Evaluation never mutates
// any of it.
type Input struct {
	// NewTrades are the trades inserted by the current run.
	NewTrades []model.Trade

	// Aggregates are the current per-politician rollups (including the new
	// trades).
	Aggregates map[string]model.PoliticianAggregate

	// PriorSnapshots holds each politician's aggregate from the previous
	// run's snapshot log. Empty on the first run; rules that need history
	// are skipped rather than misfiring.
	PriorSnapshots map[string]model.PoliticianSnapshot

	// WindowDays is the trailing window length (the run's fetch window).
	WindowDays int
}

// Evaluate applies the configured rules and returns the resulting events in
// deterministic order: grouped by kind (NewLargeTrade, UnusualActivityVolume,
// SectorConcentrationShift, ClusterActivity), then severity descending, then
// subject ascending.
func Evaluate(in Input, th Thresholds) []model.AlertEvent {
	var events []model.AlertEvent

	if th.OnLargeTrades {
		events = append(events, largeTrades(in.NewTrades, th.LargeTradeAmount)...)
	}
	if th.OnUnusualVolume {
		events = append(events, unusualVolume(in, th.VolumeMultiplier)...)
	}
	if th.OnSectorChanges {
		events = append(events, sectorShifts(in, th.SectorShiftPoints)...)
	}
	if th.OnClusters {
		events = append(events, clusters(in.NewTrades, th.ClusterMinPoliticians)...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Kind != events[j].Kind {
			return events[i].Kind < events[j].Kind
		}
		if events[i].Severity != events[j].Severity {
			return events[i].Severity > events[j].Severity
		}
		return events[i].Subject() < events[j].Subject()
	})

	return events
}

// largeTrades emits one event per new trade at or above the threshold.
func largeTrades(newTrades []model.Trade, threshold float64) []model.AlertEvent {
	if threshold <= 0 {
		return nil
	}

	var events []model.AlertEvent
	for _, t := range newTrades {
		if t.Amount < threshold {
			continue
		}
		events = append(events, model.AlertEvent{
			Kind:       model.AlertNewLargeTrade,
			Politician: t.Politician,
			Ticker:     t.Ticker,
			Severity:   ratioSeverity(t.Amount / threshold),
			Threshold:  threshold,
			Message: fmt.Sprintf("%s (%s): %s %s for %s",
				t.Politician, t.Chamber, t.Action, t.Ticker, Dollars(t.Amount)),
		})
	}
	return events
}

// unusualVolume emits one event per politician whose trade count this window
// exceeds their historical per-window average by the multiplier. Politicians
// with no history before this run are skipped.
func unusualVolume(in Input, multiplier float64) []model.AlertEvent {
	if multiplier <= 0 || in.WindowDays <= 0 {
		return nil
	}

	newCounts := make(map[string]int)
	for _, t := range in.NewTrades {
		newCounts[t.Politician]++
	}

	var events []model.AlertEvent
	for politician, newCount := range newCounts {
		agg, ok := in.Aggregates[politician]
		if !ok {
			continue
		}

		histCount := agg.TradeCount - newCount
		if histCount <= 0 {
			// First appearance; no baseline to compare against.
			continue
		}

		days := agg.LastTransaction.Sub(agg.FirstTransaction).Hours()/24 + 1
		windows := math.Max(1, days/float64(in.WindowDays))
		avg := float64(histCount) / windows

		if float64(newCount) <= avg*multiplier {
			continue
		}

		events = append(events, model.AlertEvent{
			Kind:       model.AlertUnusualActivityVolume,
			Politician: politician,
			Severity:   ratioSeverity(float64(newCount) / (avg * multiplier)),
			Threshold:  multiplier,
			Message: fmt.Sprintf("%s: %d trades this window vs %.1f per-window average",
				politician, newCount, avg),
		})
	}
	return events
}

// sectorShifts compares each politician's sector distribution against their
// prior snapshot. Without a prior snapshot the rule is skipped for that
// politician; a first run is never treated as a full shift.
func sectorShifts(in Input, points float64) []model.AlertEvent {
	if points <= 0 {
		return nil
	}

	var events []model.AlertEvent
	for politician, agg := range in.Aggregates {
		prior, ok := in.PriorSnapshots[politician]
		if !ok {
			continue
		}

		curr := agg.SectorShares()
		prev := prior.SectorShares()
		if len(curr) == 0 || len(prev) == 0 {
			continue
		}

		var (
			maxDelta  float64
			maxSector string
		)
		for sector := range union(curr, prev) {
			delta := math.Abs(curr[sector] - prev[sector])
			if delta > maxDelta {
				maxDelta = delta
				maxSector = sector
			}
		}

		if maxDelta <= points {
			continue
		}

		events = append(events, model.AlertEvent{
			Kind:       model.AlertSectorConcentrationShift,
			Politician: politician,
			Severity:   ratioSeverity(maxDelta / points),
			Threshold:  points,
			Message: fmt.Sprintf("%s: %s share moved %.1f points (%.1f%% -> %.1f%%)",
				politician, maxSector, maxDelta, prev[maxSector], curr[maxSector]),
		})
	}
	return events
}

// clusters emits one event per ticker traded by enough distinct politicians
// within the same run.
func clusters(newTrades []model.Trade, minPoliticians int) []model.AlertEvent {
	if minPoliticians <= 0 {
		return nil
	}

	byTicker := make(map[string]map[string]struct{})
	for _, t := range newTrades {
		if byTicker[t.Ticker] == nil {
			byTicker[t.Ticker] = make(map[string]struct{})
		}
		byTicker[t.Ticker][t.Politician] = struct{}{}
	}

	var events []model.AlertEvent
	for ticker, politicians := range byTicker {
		if len(politicians) < minPoliticians {
			continue
		}

		names := make([]string, 0, len(politicians))
		for name := range politicians {
			names = append(names, name)
		}
		sort.Strings(names)

		events = append(events, model.AlertEvent{
			Kind:        model.AlertClusterActivity,
			Ticker:      ticker,
			Politicians: names,
			Severity:    ratioSeverity(float64(len(names)) / float64(minPoliticians)),
			Threshold:   float64(minPoliticians),
			Message: fmt.Sprintf("%d politicians traded %s this run: %s",
				len(names), ticker, strings.Join(names, ", ")),
		})
	}
	return events
}

// ratioSeverity maps how far past the threshold a value landed onto the
// 1..3 severity scale.
func ratioSeverity(ratio float64) int {
	switch {
	case ratio >= 5:
		return 3
	case ratio >= 2:
		return 2
	default:
		return 1
	}
}

func union(a, b map[string]float64) map[string]struct{} {
	u := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		u[k] = struct{}{}
	}
	for k := range b {
		u[k] = struct{}{}
	}
	return u
}

// Dollars formats an amount as a whole-dollar figure with thousands
// separators ("$120,000").
func Dollars(amount float64) string {
	n := int64(math.Round(amount))
	neg := n < 0
	if neg {
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := "$" + strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
