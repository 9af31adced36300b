// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the gearscan configuration file model.
package config

import (
	"time"

	"github.com/AleutianAI/gearscan/services/schematic/telemetry"
)

type GearscanConfig struct {
	// Log: console level/format and optional file logging
	Log LogConfig `yaml:"log"`

	// Analysis: limits applied to every grid
	Analysis AnalysisConfig `yaml:"analysis"`

	// Server: the HTTP surface started by `gearscan serve`
	Server ServerConfig `yaml:"server"`

	// Telemetry: OpenTelemetry exporters
	Telemetry telemetry.Config `yaml:"telemetry"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"loglevel"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.gearscan/logs
}

type AnalysisConfig struct {
	MaxGridBytes int `yaml:"max_grid_bytes" validate:"gte=0"` // 0 disables the limit
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"` // requests/s, 0 disables
	RateBurst       int           `yaml:"rate_burst" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	// MetricExporter replaces Telemetry.MetricExporter while serving, so
	// /metrics is on by default for the server and off for the CLI.
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=prometheus stdout none"`
}

func DefaultConfig() GearscanConfig {
	return GearscanConfig{
		Log: LogConfig{
			Level: "info",
		},
		Analysis: AnalysisConfig{
			MaxGridBytes: 1 << 20,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            12230,
			RateLimit:       50,
			RateBurst:       100,
			ShutdownTimeout: 10 * time.Second,
			MetricExporter:  telemetry.ExporterPrometheus,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}
