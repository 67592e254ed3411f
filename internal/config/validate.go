package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return errors.New("api.api_key is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("database.host is required for the postgres driver")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required for the postgres driver")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required for the postgres driver")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)",
				c.Database.MinConns, c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	if c.Tracker.LookbackDays < 1 {
		return errors.New("tracker.lookback_days must be >= 1")
	}
	if c.Tracker.MinTradeAmount < 0 {
		return errors.New("tracker.min_trade_amount must be >= 0")
	}
	if c.Tracker.AlertLargeTradeAmount < c.Tracker.MinTradeAmount {
		return fmt.Errorf("tracker.alert_large_trade_amount (%v) must be >= min_trade_amount (%v)",
			c.Tracker.AlertLargeTradeAmount, c.Tracker.MinTradeAmount)
	}
	if c.Tracker.UnusualVolumeMultiplier <= 0 {
		return errors.New("tracker.unusual_volume_multiplier must be > 0")
	}
	if c.Tracker.ClusterMinPoliticians < 2 {
		return errors.New("tracker.cluster_min_politicians must be >= 2")
	}
	if c.Tracker.OutputPath == "" {
		return errors.New("tracker.output_path is required")
	}

	return nil
}
