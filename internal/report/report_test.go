package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/congress-tracker/internal/model"
)

func testSummary() model.RunSummary {
	return model.RunSummary{
		RunAt:         time.Date(2025, 1, 21, 6, 0, 0, 0, time.UTC),
		From:          time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC),
		Fetched:       12,
		NewTrades:     9,
		Duplicates:    2,
		Malformed:     1,
		TotalNewValue: 345000,
	}
}

func TestFormat_WithEvents(t *testing.T) {
	f, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	events := []model.AlertEvent{
		{
			Kind:       model.AlertNewLargeTrade,
			Politician: "Jane Doe",
			Ticker:     "NVDA",
			Severity:   2,
			Message:    "Jane Doe (Senate): Buy NVDA for $120,000",
		},
		{
			Kind:        model.AlertClusterActivity,
			Ticker:      "XYZ",
			Politicians: []string{"Jane Doe", "John Roe"},
			Severity:    1,
			Message:     "2 politicians traded XYZ this run: Jane Doe, John Roe",
		},
	}

	aggs := map[string]model.PoliticianAggregate{
		"Jane Doe": {Politician: "Jane Doe", Chamber: model.ChamberSenate, TradeCount: 7, TotalValue: 300000},
		"John Roe": {Politician: "John Roe", Chamber: model.ChamberHouse, TradeCount: 2, TotalValue: 45000},
	}

	large := []model.Trade{
		{
			Politician:      "Jane Doe",
			Ticker:          "NVDA",
			Action:          model.ActionBuy,
			Amount:          120000,
			TransactionDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	out, err := f.Format(events, testSummary(), aggs, large)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	for _, want := range []string{
		"2025-01-21T06:00:00Z",
		"New trades: 9",
		"$345,000",
		"NewLargeTrade",
		"Jane Doe (Senate): Buy NVDA for $120,000",
		"ClusterActivity",
		"Recent Large Trades",
		"2025-01-20 Jane Doe: Buy NVDA $120,000",
		"Most Active Traders",
		"Jane Doe (Senate): 7 trades",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "No significant activity") {
		t.Errorf("quiet message present despite events:\n%s", out)
	}
}

func TestFormat_NoEvents(t *testing.T) {
	f, err := New(0)
	if err != nil {
		t.Fatal(err)
	}

	out, err := f.Format(nil, testSummary(), nil, nil)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(out, "No significant activity.") {
		t.Errorf("missing quiet message:\n%s", out)
	}
	if strings.Contains(out, "Recent Large Trades") {
		t.Errorf("large-trade section present without large trades:\n%s", out)
	}
	// The summary must be present regardless of event count.
	for _, want := range []string{"New trades: 9", "$345,000", "2025-01-21T06:00:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormat_TopTradersBounded(t *testing.T) {
	f, err := New(1)
	if err != nil {
		t.Fatal(err)
	}

	aggs := map[string]model.PoliticianAggregate{
		"Jane Doe": {Politician: "Jane Doe", Chamber: model.ChamberSenate, TradeCount: 7},
		"John Roe": {Politician: "John Roe", Chamber: model.ChamberHouse, TradeCount: 2},
	}

	out, err := f.Format(nil, testSummary(), aggs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Jane Doe") {
		t.Errorf("top trader missing:\n%s", out)
	}
	if strings.Contains(out, "John Roe") {
		t.Errorf("trader beyond top count present:\n%s", out)
	}
}

func TestFormatFailure(t *testing.T) {
	f, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	out := f.FormatFailure(testSummary(), errors.New("fetch disclosures: connection refused"))

	if !strings.Contains(out, "RUN FAILED") {
		t.Errorf("missing failure marker:\n%s", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Errorf("missing cause:\n%s", out)
	}
	if strings.Contains(out, "No significant activity") {
		t.Errorf("failure report must not look like a quiet success:\n%s", out)
	}
}
