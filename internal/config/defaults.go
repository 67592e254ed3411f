package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL    = "https://financialmodelingprep.com/api/v3"
	DefaultAPITimeout = 30 * time.Second
	DefaultMaxRetries = 3

	DefaultDBDriver  = "sqlite"
	DefaultDBPath    = "data/trades.db"
	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultLookbackDays            = 7
	DefaultMinTradeAmount          = 1000
	DefaultAlertLargeTradeAmount   = 50000
	DefaultTopPoliticianCount      = 5
	DefaultUnusualVolumeMultiplier = 3
	DefaultSectorShiftPoints       = 20
	DefaultClusterMinPoliticians   = 3
	DefaultOutputPath              = "data/alert.txt"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Database defaults
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDBDriver
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Tracker defaults
	if c.Tracker.LookbackDays == 0 {
		c.Tracker.LookbackDays = DefaultLookbackDays
	}
	if c.Tracker.MinTradeAmount == 0 {
		c.Tracker.MinTradeAmount = DefaultMinTradeAmount
	}
	if c.Tracker.AlertLargeTradeAmount == 0 {
		c.Tracker.AlertLargeTradeAmount = DefaultAlertLargeTradeAmount
	}
	if c.Tracker.TopPoliticianCount == 0 {
		c.Tracker.TopPoliticianCount = DefaultTopPoliticianCount
	}
	if c.Tracker.UnusualVolumeMultiplier == 0 {
		c.Tracker.UnusualVolumeMultiplier = DefaultUnusualVolumeMultiplier
	}
	if c.Tracker.SectorShiftPoints == 0 {
		c.Tracker.SectorShiftPoints = DefaultSectorShiftPoints
	}
	if c.Tracker.ClusterMinPoliticians == 0 {
		c.Tracker.ClusterMinPoliticians = DefaultClusterMinPoliticians
	}
	if c.Tracker.OutputPath == "" {
		c.Tracker.OutputPath = DefaultOutputPath
	}

	// Rule toggles default to enabled.
	enabled := true
	if c.Tracker.AlertOnLargeTrades == nil {
		c.Tracker.AlertOnLargeTrades = &enabled
	}
	if c.Tracker.AlertOnUnusualVolume == nil {
		c.Tracker.AlertOnUnusualVolume = &enabled
	}
	if c.Tracker.AlertOnSectorChanges == nil {
		c.Tracker.AlertOnSectorChanges = &enabled
	}
	if c.Tracker.AlertOnClusters == nil {
		c.Tracker.AlertOnClusters = &enabled
	}
}
