package report

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rickgao/congress-tracker/internal/alert"
	"github.com/rickgao/congress-tracker/internal/model"
)

const reportTemplate = `Congressional Stock Tracker
Run: {{.RunAt}}
Window: {{.From}} to {{.To}}

New trades: {{.Summary.NewTrades}} (fetched {{.Summary.Fetched}}, duplicates {{.Summary.Duplicates}}, malformed {{.Summary.Malformed}}, below minimum {{.Summary.BelowMinimum}})
Total new value: {{dollars .Summary.TotalNewValue}}

{{if .Groups -}}
Alerts:
{{range .Groups}}{{.Kind}}:
{{range .Events}}  [{{.Severity}}] {{.Message}}
{{end}}{{end}}
{{- else -}}
No significant activity.
{{end}}
{{- if .LargeTrades}}
Recent Large Trades:
{{range .LargeTrades}}  {{.TransactionDate.Format "2006-01-02"}} {{.Politician}}: {{.Action}} {{.Ticker}} {{dollars .Amount}}
{{end}}{{end}}
{{- if .TopTraders}}
Most Active Traders:
{{range .TopTraders}}  {{.Politician}} ({{.Chamber}}): {{.TradeCount}} trades, {{dollars .TotalValue}}
{{end}}{{end -}}
`

const failureTemplate = `Congressional Stock Tracker
Run: {{.RunAt}}
Window: {{.From}} to {{.To}}

RUN FAILED: {{.Reason}}

No trade data from this run should be trusted; the previous report remains
the last good one.
`

type eventGroup struct {
	Kind   string
	Events []model.AlertEvent
}

type reportData struct {
	RunAt       string
	From        string
	To          string
	Summary     model.RunSummary
	Groups      []eventGroup
	LargeTrades []model.Trade
	TopTraders  []model.PoliticianAggregate
}

// Formatter renders alert events and the run summary into the plain-text
// output artifact.
type Formatter struct {
	tmpl     *template.Template
	failTmpl *template.Template
	topCount int
}

// New creates a Formatter. topCount bounds the Most Active Traders section;
// zero disables it.
func New(topCount int) (*Formatter, error) {
	funcs := template.FuncMap{"dollars": alert.Dollars}

	tmpl, err := template.New("report").Funcs(funcs).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	failTmpl, err := template.New("failure").Parse(failureTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse failure template: %w", err)
	}

	return &Formatter{tmpl: tmpl, failTmpl: failTmpl, topCount: topCount}, nil
}

// Format renders a successful run. The summary line is always present even
// when no event fired, so "nothing notable" is distinguishable from
// "did not run".
func (f *Formatter) Format(events []model.AlertEvent, sum model.RunSummary, aggs map[string]model.PoliticianAggregate, large []model.Trade) (string, error) {
	data := reportData{
		RunAt:       sum.RunAt.UTC().Format(time.RFC3339),
		From:        sum.From.Format(model.DateFormat),
		To:          sum.To.Format(model.DateFormat),
		Summary:     sum,
		Groups:      groupByKind(events),
		LargeTrades: sortedByAmount(large),
		TopTraders:  topTraders(aggs, f.topCount),
	}

	var b strings.Builder
	if err := f.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

// FormatFailure renders the distinct failure artifact for a run that did
// not complete.
func (f *Formatter) FormatFailure(sum model.RunSummary, reason error) string {
	data := struct {
		RunAt, From, To, Reason string
	}{
		RunAt:  sum.RunAt.UTC().Format(time.RFC3339),
		From:   sum.From.Format(model.DateFormat),
		To:     sum.To.Format(model.DateFormat),
		Reason: reason.Error(),
	}

	var b strings.Builder
	if err := f.failTmpl.Execute(&b, data); err != nil {
		// The failure path must always produce something.
		return fmt.Sprintf("Congressional Stock Tracker\nRUN FAILED: %v\n", reason)
	}
	return b.String()
}

// groupByKind preserves the evaluator's event order within each kind group.
func groupByKind(events []model.AlertEvent) []eventGroup {
	var groups []eventGroup
	for _, e := range events {
		if len(groups) == 0 || groups[len(groups)-1].Kind != e.Kind.String() {
			groups = append(groups, eventGroup{Kind: e.Kind.String()})
		}
		last := &groups[len(groups)-1]
		last.Events = append(last.Events, e)
	}
	return groups
}

// sortedByAmount orders this run's large trades biggest first, ties broken
// by ticker. The input is not modified.
func sortedByAmount(trades []model.Trade) []model.Trade {
	if len(trades) == 0 {
		return nil
	}
	out := make([]model.Trade, len(trades))
	copy(out, trades)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

// topTraders returns the n most active politicians, ties broken by name for
// stable output.
func topTraders(aggs map[string]model.PoliticianAggregate, n int) []model.PoliticianAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}

	list := make([]model.PoliticianAggregate, 0, len(aggs))
	for _, agg := range aggs {
		list = append(list, agg)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TradeCount != list[j].TradeCount {
			return list[i].TradeCount > list[j].TradeCount
		}
		return list[i].Politician < list[j].Politician
	})

	if len(list) > n {
		list = list[:n]
	}
	return list
}
