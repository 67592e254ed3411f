package config

import "time"

// Config is the root configuration for a tracker instance.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Tracker  TrackerConfig  `yaml:"tracker"`
}

// APIConfig holds upstream API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// DatabaseConfig selects and configures the trade store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"

	// SQLite
	Path string `yaml:"path"`

	// PostgreSQL
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// TrackerConfig holds the pipeline and alerting settings.
type TrackerConfig struct {
	// LookbackDays is the fetch window and the trailing window for the
	// unusual-volume rule.
	LookbackDays int `yaml:"lookback_days"`

	// MinTradeAmount is the ingestion minimum: trades below it are not
	// stored at all.
	MinTradeAmount float64 `yaml:"min_trade_amount"`

	// AlertLargeTradeAmount is the NewLargeTrade threshold. Independent of
	// and at least MinTradeAmount.
	AlertLargeTradeAmount float64 `yaml:"alert_large_trade_amount"`

	TopPoliticianCount      int     `yaml:"top_politician_count"`
	UnusualVolumeMultiplier float64 `yaml:"unusual_volume_multiplier"`
	SectorShiftPoints       float64 `yaml:"sector_shift_points"`
	ClusterMinPoliticians   int     `yaml:"cluster_min_politicians"`

	// Rule toggles. Unset means enabled.
	AlertOnLargeTrades   *bool `yaml:"alert_on_large_trades"`
	AlertOnUnusualVolume *bool `yaml:"alert_on_unusual_volume"`
	AlertOnSectorChanges *bool `yaml:"alert_on_sector_changes"`
	AlertOnClusters      *bool `yaml:"alert_on_clusters"`

	// OutputPath is the report artifact, overwritten each run.
	OutputPath string `yaml:"output_path"`

	// SectorMapPath optionally overrides the builtin ticker→sector table.
	SectorMapPath string `yaml:"sector_map_path"`
}
