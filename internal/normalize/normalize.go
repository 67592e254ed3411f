package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/congress-tracker/internal/model"
)

// Record is the minimal raw-disclosure contract every upstream source is
// adapted into before normalization. Field values are raw strings exactly as
// the source supplied them; the api package is responsible for coalescing
// source-specific field names (representative vs senator, type vs
// transactionType) into this shape.
type Record struct {
	Politician      string
	Chamber         string
	Ticker          string
	Company         string
	Action          string
	Amount          string // e.g. "$1,001 - $15,000"
	TransactionDate string
	DisclosureDate  string
	SourceID        string
	SourceLink      string
}

// MalformedRecordError reports a raw record that cannot be normalized. The
// record is skipped and counted, never silently defaulted.
type MalformedRecordError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: field %s (%q): %s", e.Field, e.Value, e.Reason)
}

// nsDisclosure is the namespace for synthesized source IDs. Fixed so the
// same disclosure always synthesizes the same ID across runs.
var nsDisclosure = uuid.MustParse("7f3a1c52-9b0e-4d8a-9f6c-2d5e8b1a4c70")

// Normalize converts one raw disclosure record into a canonical Trade.
//
// The representative dollar value is always the lower bound of the disclosed
// range; the same rule is applied to every record so identical disclosures
// normalize identically (the dedup key depends on it).
func Normalize(rec Record) (model.Trade, error) {
	politician := strings.TrimSpace(rec.Politician)
	if politician == "" {
		return model.Trade{}, &MalformedRecordError{Field: "politician", Value: rec.Politician, Reason: "missing"}
	}

	ticker := strings.ToUpper(strings.TrimSpace(rec.Ticker))
	if ticker == "" {
		return model.Trade{}, &MalformedRecordError{Field: "ticker", Value: rec.Ticker, Reason: "missing"}
	}

	chamber, err := parseChamber(rec.Chamber)
	if err != nil {
		return model.Trade{}, err
	}

	action, err := parseAction(rec.Action)
	if err != nil {
		return model.Trade{}, err
	}

	txDate, err := parseDate("transaction_date", rec.TransactionDate)
	if err != nil {
		return model.Trade{}, err
	}

	// Disclosure date is optional upstream; default to the transaction date,
	// and clamp to it when upstream reports an earlier disclosure.
	discDate := txDate
	if strings.TrimSpace(rec.DisclosureDate) != "" {
		discDate, err = parseDate("disclosure_date", rec.DisclosureDate)
		if err != nil {
			return model.Trade{}, err
		}
		if discDate.Before(txDate) {
			discDate = txDate
		}
	}

	low, high, err := ParseAmountRange(rec.Amount)
	if err != nil {
		return model.Trade{}, err
	}

	tr := model.Trade{
		Politician:      politician,
		Chamber:         chamber,
		Ticker:          ticker,
		Company:         strings.TrimSpace(rec.Company),
		Action:          action,
		Amount:          low,
		RangeLow:        low,
		RangeHigh:       high,
		AmountBucket:    bucket(low, high),
		TransactionDate: txDate,
		DisclosureDate:  discDate,
		SourceID:        strings.TrimSpace(rec.SourceID),
		SourceLink:      strings.TrimSpace(rec.SourceLink),
	}

	if tr.SourceID == "" {
		tr.SourceID = synthesizeID(tr)
	}

	return tr, nil
}

// ParseAmountRange parses a disclosed amount like "$1,001 - $15,000" into
// its numeric bounds. A single value parses to an equal low and high.
func ParseAmountRange(s string) (low, high float64, err error) {
	clean := strings.NewReplacer("$", "", ",", "", "+", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, 0, &MalformedRecordError{Field: "amount", Value: s, Reason: "missing"}
	}

	parts := strings.SplitN(clean, "-", 2)
	low, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, &MalformedRecordError{Field: "amount", Value: s, Reason: "unparseable lower bound"}
	}

	high = low
	if len(parts) == 2 {
		high, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, 0, &MalformedRecordError{Field: "amount", Value: s, Reason: "unparseable upper bound"}
		}
	}

	if low < 0 || high < low {
		return 0, 0, &MalformedRecordError{Field: "amount", Value: s, Reason: "invalid range"}
	}

	return low, high, nil
}

func parseChamber(s string) (model.Chamber, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "house":
		return model.ChamberHouse, nil
	case "senate":
		return model.ChamberSenate, nil
	default:
		return "", &MalformedRecordError{Field: "chamber", Value: s, Reason: "unknown chamber"}
	}
}

func parseAction(s string) (model.TradeAction, error) {
	switch norm := strings.ToLower(strings.TrimSpace(s)); {
	case norm == "buy" || strings.HasPrefix(norm, "purchase"):
		return model.ActionBuy, nil
	case norm == "sell" || strings.HasPrefix(norm, "sale"):
		return model.ActionSell, nil
	case strings.HasPrefix(norm, "exchange"):
		return model.ActionExchange, nil
	default:
		return "", &MalformedRecordError{Field: "action", Value: s, Reason: "unknown transaction type"}
	}
}

// parseDate parses a calendar date, tolerating timestamp suffixes
// ("2025-01-15T00:00:00Z" is truncated to its date part).
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateFormat) {
		s = s[:len(model.DateFormat)]
	}
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, &MalformedRecordError{Field: field, Value: s, Reason: "unparseable date"}
	}
	return t, nil
}

// bucket renders the disclosed range as a canonical string for the dedup key.
func bucket(low, high float64) string {
	return strconv.FormatFloat(low, 'f', -1, 64) + "-" + strconv.FormatFloat(high, 'f', -1, 64)
}

// synthesizeID derives a stable ID for records whose source provides none.
// UUIDv5 over the canonical tuple, so re-fetching the same disclosure
// synthesizes the same ID.
func synthesizeID(t model.Trade) string {
	name := strings.Join([]string{
		t.Politician,
		string(t.Chamber),
		t.Ticker,
		string(t.Action),
		t.AmountBucket,
		t.TransactionDate.Format(model.DateFormat),
	}, "|")
	return uuid.NewSHA1(nsDisclosure, []byte(name)).String()
}
