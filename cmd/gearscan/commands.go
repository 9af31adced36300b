// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/gearscan/cmd/gearscan/config"
	"github.com/AleutianAI/gearscan/pkg/logging"
	"github.com/AleutianAI/gearscan/services/schematic"
	"github.com/AleutianAI/gearscan/services/schematic/index"
	"github.com/AleutianAI/gearscan/services/schematic/telemetry"
)

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	// --- Global flags ---
	configPath string
	logLevel   string
	logJSON    bool

	// --- Resolved in PersistentPreRunE ---
	cfg    config.GearscanConfig
	logger *logging.Logger
	svc    *schematic.Service
}

// newRootCmd assembles the command tree. Each call returns an independent
// tree so tests can run commands in isolation.
func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "gearscan",
		Short: "Solve engine schematics: part numbers and gear ratios",
		Long: `gearscan reads an engine schematic (a grid of digits, '.' gaps and
symbols), sums every number adjacent to a symbol, and sums the gear
ratios of '*' symbols adjacent to exactly two numbers.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.logger != nil {
				return c.logger.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "",
		"Config file (default ~/.gearscan/gearscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&c.logJSON, "log-json", false,
		"Write logs to stderr as JSON")

	rootCmd.AddCommand(
		c.solveCmd(),
		c.gearsCmd(),
		c.tokensCmd(),
		c.renderCmd(),
		c.serveCmd(),
		c.configCmd(),
	)
	return rootCmd
}

// setup loads configuration, then builds the logger and the service.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logJSON {
		cfg.Log.JSON = true
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Log.Dir,
		Service: "gearscan",
		JSON:    cfg.Log.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(c.logger.Slog())

	c.svc = schematic.NewService(schematic.ServiceConfig{
		MaxGridBytes: cfg.Analysis.MaxGridBytes,
		Logger:       c.logger.Slog(),
	})
	return nil
}

// withTelemetry runs fn with the configured exporters installed.
func (c *cli) withTelemetry(ctx context.Context, tcfg telemetry.Config, fn func(context.Context) error) error {
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			c.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	return fn(ctx)
}

// readInput returns the grid named by args: a file path, or stdin when
// args is empty or "-".
func readInput(cmd *cobra.Command, args []string) (grid, name string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "-", nil
	}

	path := filepath.Clean(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), path, nil
}

// buildInput reads args and builds the schematic.
func (c *cli) buildInput(cmd *cobra.Command, args []string) (*index.Schematic, []string, error) {
	grid, _, err := readInput(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	sch, err := c.svc.Build(commandContext(cmd), grid)
	if err != nil {
		return nil, nil, err
	}
	return sch, index.SplitRows(grid), nil
}

// commandContext returns cmd's context, or Background when cmd runs
// without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
