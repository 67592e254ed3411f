package sector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Classifier maps ticker symbols to industry sectors. Classification is
// best-effort: tickers absent from the table are reported as unresolved and
// must never fail a caller's computation.
type Classifier struct {
	sectors map[string]string
}

// New returns a classifier seeded with the builtin table.
func New() *Classifier {
	m := make(map[string]string, len(builtin))
	for ticker, sector := range builtin {
		m[ticker] = sector
	}
	return &Classifier{sectors: m}
}

// LoadOverrides merges a YAML ticker→sector mapping file into the table.
// Entries override builtin classifications.
func (c *Classifier) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sector map: %w", err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse sector map yaml: %w", err)
	}

	for ticker, sector := range overrides {
		c.sectors[strings.ToUpper(strings.TrimSpace(ticker))] = strings.TrimSpace(sector)
	}
	return nil
}

// Classify returns the sector for a ticker, and whether it could be
// resolved.
func (c *Classifier) Classify(ticker string) (string, bool) {
	sector, ok := c.sectors[strings.ToUpper(strings.TrimSpace(ticker))]
	return sector, ok
}

// builtin covers the most commonly disclosed tickers. The table is
// deliberately small; unknown tickers simply stay unclassified.
var builtin = map[string]string{
	"AAPL":  "Technology",
	"MSFT":  "Technology",
	"NVDA":  "Technology",
	"GOOGL": "Technology",
	"GOOG":  "Technology",
	"META":  "Technology",
	"AMD":   "Technology",
	"INTC":  "Technology",
	"CRM":   "Technology",
	"ORCL":  "Technology",
	"CSCO":  "Technology",
	"IBM":   "Technology",
	"AVGO":  "Technology",
	"TXN":   "Technology",
	"QCOM":  "Technology",
	"MU":    "Technology",
	"TSM":   "Technology",

	"AMZN": "Consumer Discretionary",
	"TSLA": "Consumer Discretionary",
	"HD":   "Consumer Discretionary",
	"NKE":  "Consumer Discretionary",
	"MCD":  "Consumer Discretionary",
	"SBUX": "Consumer Discretionary",
	"LOW":  "Consumer Discretionary",

	"JPM": "Financials",
	"BAC": "Financials",
	"WFC": "Financials",
	"GS":  "Financials",
	"MS":  "Financials",
	"C":   "Financials",
	"V":   "Financials",
	"MA":  "Financials",
	"AXP": "Financials",
	"BLK": "Financials",
	"SCHW": "Financials",

	"JNJ":  "Health Care",
	"PFE":  "Health Care",
	"UNH":  "Health Care",
	"MRK":  "Health Care",
	"ABBV": "Health Care",
	"LLY":  "Health Care",
	"TMO":  "Health Care",
	"ABT":  "Health Care",
	"BMY":  "Health Care",
	"AMGN": "Health Care",

	"XOM": "Energy",
	"CVX": "Energy",
	"COP": "Energy",
	"SLB": "Energy",
	"OXY": "Energy",
	"PSX": "Energy",

	"PG":  "Consumer Staples",
	"KO":  "Consumer Staples",
	"PEP": "Consumer Staples",
	"WMT": "Consumer Staples",
	"COST": "Consumer Staples",
	"CL":  "Consumer Staples",

	"BA":  "Industrials",
	"CAT": "Industrials",
	"GE":  "Industrials",
	"HON": "Industrials",
	"LMT": "Industrials",
	"RTX": "Industrials",
	"UPS": "Industrials",
	"DE":  "Industrials",

	"DIS":  "Communication Services",
	"NFLX": "Communication Services",
	"CMCSA": "Communication Services",
	"T":    "Communication Services",
	"VZ":   "Communication Services",

	"NEE": "Utilities",
	"DUK": "Utilities",
	"SO":  "Utilities",

	"AMT": "Real Estate",
	"PLD": "Real Estate",

	"LIN": "Materials",
	"APD": "Materials",
	"FCX": "Materials",
}
