package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/congress-tracker/internal/alert"
	"github.com/rickgao/congress-tracker/internal/api"
	"github.com/rickgao/congress-tracker/internal/normalize"
	"github.com/rickgao/congress-tracker/internal/report"
	"github.com/rickgao/congress-tracker/internal/sector"
	"github.com/rickgao/congress-tracker/internal/store"
)

type fakeFetcher struct {
	records []normalize.Record
	err     error
	calls   int
}

func (f *fakeFetcher) FetchDisclosures(ctx context.Context, from, to time.Time) ([]normalize.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func record(politician, ticker, amount, date string) normalize.Record {
	return normalize.Record{
		Politician:      politician,
		Chamber:         "House",
		Ticker:          ticker,
		Company:         ticker + " Inc",
		Action:          "Purchase",
		Amount:          amount,
		TransactionDate: date,
	}
}

func newTestDriver(t *testing.T, fetcher Fetcher, cfg Config) (*Driver, store.Store) {
	t.Helper()

	st, err := store.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	formatter, err := report.New(cfg.TopPoliticianCount)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	d := New(cfg, fetcher, st, formatter, sector.New(), WithClock(func() time.Time { return fixed }))
	return d, st
}

func defaultConfig(outputPath string) Config {
	return Config{
		LookbackDays:       7,
		MinTradeAmount:     1000,
		TopPoliticianCount: 5,
		OutputPath:         outputPath,
		Thresholds: alert.Thresholds{
			LargeTradeAmount:      100000,
			VolumeMultiplier:      3,
			SectorShiftPoints:     20,
			ClusterMinPoliticians: 3,
			OnLargeTrades:         true,
			OnUnusualVolume:       true,
			OnSectorChanges:       true,
			OnClusters:            true,
		},
	}
}

func TestRunHappyPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "alert.txt")
	fetcher := &fakeFetcher{records: []normalize.Record{
		record("Rep. Jane Doe", "NVDA", "$100,001 - $250,000", "2026-08-25"),
		record("Rep. Jane Doe", "AAPL", "$15,001 - $50,000", "2026-08-26"),
		record("Sen. John Roe", "XOM", "$1,001 - $15,000", "2026-08-24"),
	}}
	d, _ := newTestDriver(t, fetcher, defaultConfig(out))

	sum, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if d.State() != StateDone {
		t.Errorf("state = %v, want done", d.State())
	}
	if sum.Fetched != 3 || sum.NewTrades != 3 || sum.Duplicates != 0 {
		t.Errorf("summary = fetched %d new %d dup %d, want 3/3/0",
			sum.Fetched, sum.NewTrades, sum.Duplicates)
	}

	text, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	body := string(text)
	if !strings.Contains(body, "NVDA") || !strings.Contains(body, "$100,001") {
		t.Errorf("artifact missing large-trade alert:\n%s", body)
	}
	if !strings.Contains(body, "New trades: 3") {
		t.Errorf("artifact missing run summary:\n%s", body)
	}
	if !strings.Contains(body, "Recent Large Trades") {
		t.Errorf("artifact missing large-trades section:\n%s", body)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "alert.txt")
	fetcher := &fakeFetcher{records: []normalize.Record{
		record("Rep. Jane Doe", "NVDA", "$100,001 - $250,000", "2026-08-25"),
		record("Sen. John Roe", "XOM", "$1,001 - $15,000", "2026-08-24"),
	}}
	d, _ := newTestDriver(t, fetcher, defaultConfig(out))

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if sum.NewTrades != 0 {
		t.Errorf("second run NewTrades = %d, want 0", sum.NewTrades)
	}
	if sum.Duplicates != 2 {
		t.Errorf("second run Duplicates = %d, want 2", sum.Duplicates)
	}
	if sum.TotalNewValue != 0 {
		t.Errorf("second run TotalNewValue = %v, want 0", sum.TotalNewValue)
	}
}

func TestRunSkipsMalformedAndSmallTrades(t *testing.T) {
	out := filepath.Join(t.TempDir(), "alert.txt")
	records := []normalize.Record{
		record("", "NVDA", "$15,001 - $50,000", "2026-08-25"), // missing politician
		record("Rep. Tiny Trade", "AAPL", "$1 - $500", "2026-08-25"),
	}
	for i := 0; i < 8; i++ {
		records = append(records,
			record("Rep. Jane Doe", fmt.Sprintf("TK%d", i), "$15,001 - $50,000", "2026-08-25"))
	}
	fetcher := &fakeFetcher{records: records}
	d, _ := newTestDriver(t, fetcher, defaultConfig(out))

	sum, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Fetched != 10 {
		t.Errorf("Fetched = %d, want 10", sum.Fetched)
	}
	if sum.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", sum.Malformed)
	}
	if sum.BelowMinimum != 1 {
		t.Errorf("BelowMinimum = %d, want 1", sum.BelowMinimum)
	}
	if sum.NewTrades != 8 {
		t.Errorf("NewTrades = %d, want 8", sum.NewTrades)
	}
}

func TestRunFetchFailureWritesFailureArtifact(t *testing.T) {
	out := filepath.Join(t.TempDir(), "alert.txt")
	fetcher := &fakeFetcher{err: errors.New("upstream unavailable")}
	d, st := newTestDriver(t, fetcher, defaultConfig(out))

	_, err := d.Run(context.Background())
	if err == nil {
		t.Fatal("Run succeeded, want fetch error")
	}

	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("error type = %T, want *RunError", err)
	}
	if runErr.Kind != FailFetch {
		t.Errorf("Kind = %v, want FailFetch", runErr.Kind)
	}
	if d.State() != StateFailed {
		t.Errorf("state = %v, want failed", d.State())
	}

	// Nothing persisted.
	trades, err := st.AllTrades(context.Background())
	if err != nil {
		t.Fatalf("AllTrades: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("store has %d trades after failed fetch, want 0", len(trades))
	}

	// The artifact is a failure report, not a stale or quiet one.
	text, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(text), "RUN FAILED") {
		t.Errorf("artifact is not a failure report:\n%s", text)
	}
}

func TestRunClusterAlert(t *testing.T) {
	out := filepath.Join(t.TempDir(), "alert.txt")
	cfg := defaultConfig(out)
	cfg.Thresholds.ClusterMinPoliticians = 2

	fetcher := &fakeFetcher{records: []normalize.Record{
		record("Rep. Jane Doe", "NVDA", "$15,001 - $50,000", "2026-08-25"),
		record("Sen. John Roe", "NVDA", "$1,001 - $15,000", "2026-08-26"),
	}}
	d, _ := newTestDriver(t, fetcher, cfg)

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	text, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	body := string(text)
	if !strings.Contains(body, "ClusterActivity") {
		t.Errorf("artifact missing cluster alert:\n%s", body)
	}
	if !strings.Contains(body, "Rep. Jane Doe") || !strings.Contains(body, "Sen. John Roe") {
		t.Errorf("cluster alert missing politician names:\n%s", body)
	}
}

func TestRunAgainstHTTPUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/house-trades":
			fmt.Fprint(w, `[{"representative":"Rep. Jane Doe","ticker":"NVDA","assetName":"NVIDIA Corp","transactionType":"Purchase","amount":"$100,001 - $250,000","transactionDate":"2026-08-25","disclosureDate":"2026-08-27","link":"https://example.com/filing/1"}]`)
		case "/senate-trades":
			fmt.Fprint(w, `[{"senator":"Sen. John Roe","ticker":"XOM","assetDescription":"Exxon Mobil","type":"Sale (Full)","amount":"$1,001 - $15,000","transactionDate":"2026-08-24","filingDate":"2026-08-26"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "alert.txt")
	client := api.NewClient(srv.URL, "test-key")
	d, st := newTestDriver(t, client, defaultConfig(out))

	sum, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Fetched != 2 || sum.NewTrades != 2 {
		t.Errorf("summary = fetched %d new %d, want 2/2", sum.Fetched, sum.NewTrades)
	}

	trades, err := st.AllTrades(context.Background())
	if err != nil {
		t.Fatalf("AllTrades: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("stored %d trades, want 2", len(trades))
	}

	text, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(text), "NVDA") {
		t.Errorf("artifact missing fetched trade:\n%s", text)
	}
}

func TestStateString(t *testing.T) {
	if got := StateIdle.String(); got != "idle" {
		t.Errorf("StateIdle = %q", got)
	}
	if got := StateDone.String(); got != "done" {
		t.Errorf("StateDone = %q", got)
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("unknown state = %q", got)
	}
}
