// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the node intelligence service
// configuration from YAML.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/latticelabs/nodeintel/intel"
)

var validate = validator.New()

// Config is the root configuration for the service.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Store configures the intelligence store limits.
	Store StoreConfig `yaml:"store"`

	// Frequency overrides the relation classification table.
	Frequency FrequencyConfig `yaml:"frequency"`

	// Telemetry configures tracing and metrics export.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the bind address. Default: 127.0.0.1
	Host string `yaml:"host" validate:"required"`

	// Port is the listen port. Default: 8086
	Port int `yaml:"port" validate:"gte=1,lte=65535"`

	// ReadTimeoutSeconds bounds request header+body reads. Default: 15
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds" validate:"gte=1"`

	// WriteTimeoutSeconds bounds response writes. Default: 30
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" validate:"gte=1"`

	// WriteRateLimit caps mutating requests per second, 0 disables.
	// Default: 0
	WriteRateLimit float64 `yaml:"write_rate_limit" validate:"gte=0"`

	// WriteRateBurst is the mutating-request burst size when rate
	// limiting is enabled. Default: 10
	WriteRateBurst int `yaml:"write_rate_burst" validate:"gte=0"`
}

// StoreConfig configures the intelligence store limits.
type StoreConfig struct {
	// MaxHierarchyDepth bounds the containment forest depth. Default: 50
	MaxHierarchyDepth int `yaml:"max_hierarchy_depth" validate:"gte=1"`

	// MaxRelationshipEdges caps relationship edges per node. Default: 1000
	MaxRelationshipEdges int `yaml:"max_relationship_edges" validate:"gte=1"`

	// MaxDataflowEntries caps dataflow edges store-wide. Default: 10000
	MaxDataflowEntries int `yaml:"max_dataflow_entries" validate:"gte=1"`
}

// FrequencyConfig overrides the relation classification table. Zero values
// fall back to the built-in defaults.
type FrequencyConfig struct {
	// LowBandCeiling is the exclusive upper bound of the low band.
	LowBandCeiling float64 `yaml:"low_band_ceiling" validate:"gte=0"`

	// HighBandFloor is the inclusive lower bound of the high band.
	HighBandFloor float64 `yaml:"high_band_floor" validate:"gte=0"`

	// Keys maps relation type names (as printed by RelationType.String)
	// to classification keys.
	Keys map[string]float64 `yaml:"keys"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	// Enabled turns the OpenTelemetry pipeline on. Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this service in traces. Default: nodeintel
	ServiceName string `yaml:"service_name" validate:"required"`

	// OTLPEndpoint is the gRPC collector endpoint; empty selects stdout
	// exporters for local debugging.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format selects the handler: json or text. Default: json
	Format string `yaml:"format" validate:"oneof=json text"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                "127.0.0.1",
			Port:                8086,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
			WriteRateBurst:      10,
		},
		Store: StoreConfig{
			MaxHierarchyDepth:    intel.DefaultMaxHierarchyDepth,
			MaxRelationshipEdges: intel.DefaultMaxRelationshipEdges,
			MaxDataflowEntries:   intel.DefaultMaxDataflowEntries,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "nodeintel",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration against its struct tags plus the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Frequency.LowBandCeiling > 0 && c.Frequency.HighBandFloor > 0 &&
		c.Frequency.LowBandCeiling >= c.Frequency.HighBandFloor {
		return fmt.Errorf("invalid configuration: low_band_ceiling %v must be below high_band_floor %v",
			c.Frequency.LowBandCeiling, c.Frequency.HighBandFloor)
	}
	if _, err := c.frequencyTable(); err != nil {
		return err
	}
	return nil
}

// StoreOptions converts the configuration into store options.
//
// Errors:
//
//	Returns an error when a frequency key name does not match any
//	relation type.
func (c *Config) StoreOptions() ([]intel.Option, error) {
	table, err := c.frequencyTable()
	if err != nil {
		return nil, err
	}
	return []intel.Option{
		intel.WithMaxHierarchyDepth(c.Store.MaxHierarchyDepth),
		intel.WithMaxRelationshipEdges(c.Store.MaxRelationshipEdges),
		intel.WithMaxDataflowEntries(c.Store.MaxDataflowEntries),
		intel.WithFrequencyTable(table),
	}, nil
}

// frequencyTable merges the configured overrides onto the default table.
func (c *Config) frequencyTable() (intel.FrequencyTable, error) {
	table := intel.DefaultFrequencyTable()
	if c.Frequency.LowBandCeiling > 0 {
		table.LowBandCeiling = c.Frequency.LowBandCeiling
	}
	if c.Frequency.HighBandFloor > 0 {
		table.HighBandFloor = c.Frequency.HighBandFloor
	}
	for name, key := range c.Frequency.Keys {
		t, ok := intel.ParseRelationType(name)
		if !ok {
			return intel.FrequencyTable{}, fmt.Errorf("invalid configuration: unknown relation type %q", name)
		}
		if key <= 0 {
			return intel.FrequencyTable{}, fmt.Errorf("invalid configuration: frequency key for %q must be positive", name)
		}
		table.Keys[t] = key
	}
	return table, nil
}
