package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/congress-tracker/internal/model"
	"github.com/rickgao/congress-tracker/internal/normalize"
)

// apiDisclosure is the upstream record shape. House and Senate payloads use
// different field names for the same data; optional aliases are coalesced in
// toRecord so the rest of the pipeline only ever sees the Record contract.
type apiDisclosure struct {
	Representative   string `json:"representative"`
	Senator          string `json:"senator"`
	Ticker           string `json:"ticker"`
	AssetName        string `json:"assetName"`
	AssetDescription string `json:"assetDescription"`
	TransactionType  string `json:"transactionType"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	TransactionDate  string `json:"transactionDate"`
	DisclosureDate   string `json:"disclosureDate"`
	FilingDate       string `json:"filingDate"`
	Link             string `json:"link"`
	ID               string `json:"id"`
}

// toRecord adapts one upstream disclosure into the normalizer contract,
// stamping the chamber it was fetched from.
func (d *apiDisclosure) toRecord(chamber model.Chamber) normalize.Record {
	return normalize.Record{
		Politician:      coalesce(d.Representative, d.Senator),
		Chamber:         string(chamber),
		Ticker:          d.Ticker,
		Company:         coalesce(d.AssetName, d.AssetDescription),
		Action:          coalesce(d.TransactionType, d.Type),
		Amount:          d.Amount,
		TransactionDate: d.TransactionDate,
		DisclosureDate:  coalesce(d.DisclosureDate, d.FilingDate),
		SourceID:        d.ID,
		SourceLink:      d.Link,
	}
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetHouseTrades fetches House disclosures for the date range.
func (c *Client) GetHouseTrades(ctx context.Context, from, to time.Time) ([]normalize.Record, error) {
	return c.getTrades(ctx, "/house-trades", model.ChamberHouse, from, to)
}

// GetSenateTrades fetches Senate disclosures for the date range.
func (c *Client) GetSenateTrades(ctx context.Context, from, to time.Time) ([]normalize.Record, error) {
	return c.getTrades(ctx, "/senate-trades", model.ChamberSenate, from, to)
}

func (c *Client) getTrades(ctx context.Context, path string, chamber model.Chamber, from, to time.Time) ([]normalize.Record, error) {
	query := url.Values{}
	query.Set("from", from.Format(model.DateFormat))
	query.Set("to", to.Format(model.DateFormat))

	var disclosures []apiDisclosure
	if err := c.get(ctx, path, query, &disclosures); err != nil {
		return nil, fmt.Errorf("get %s trades: %w", chamber, err)
	}

	records := make([]normalize.Record, len(disclosures))
	for i := range disclosures {
		records[i] = disclosures[i].toRecord(chamber)
	}

	c.logger.Debug("fetched disclosures",
		"chamber", chamber,
		"count", len(records),
		"from", from.Format(model.DateFormat),
		"to", to.Format(model.DateFormat),
	)

	return records, nil
}

// FetchDisclosures fetches both chambers concurrently. Either chamber
// failing fails the whole fetch; the pipeline treats a fetch failure as
// fatal for the run, with no partial state written.
func (c *Client) FetchDisclosures(ctx context.Context, from, to time.Time) ([]normalize.Record, error) {
	var house, senate []normalize.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		house, err = c.GetHouseTrades(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		senate, err = c.GetSenateTrades(gctx, from, to)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(house, senate...), nil
}
