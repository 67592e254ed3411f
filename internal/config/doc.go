// Package config loads and validates tracker configuration from YAML with
// ${VAR} environment expansion.
package config
