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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// solveResult is the --json form of solve output.
type solveResult struct {
	Part1 uint64 `json:"part1"`
	Part2 uint64 `json:"part2"`
}

func (c *cli) solveCmd() *cobra.Command {
	var (
		asJSON   bool
		watch    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "solve [file|-]",
		Short: "Print the part-number sum and the gear-ratio sum",
		Long: `Reads a schematic from a file, or from stdin when the file is omitted
or "-", and prints:

  part 1: <sum of numbers adjacent to a symbol>
  part 2: <sum of gear ratios>

With --watch, solve re-runs every time the file changes until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTelemetry(commandContext(cmd), c.cfg.Telemetry, func(ctx context.Context) error {
				if !watch {
					grid, _, err := readInput(cmd, args)
					if err != nil {
						return err
					}
					return c.solve(ctx, cmd.OutOrStdout(), grid, asJSON)
				}
				return c.solveWatch(ctx, cmd, args, asJSON, debounce)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit {\"part1\":N,\"part2\":M}")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-solve whenever the file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Quiet period before re-solving in --watch mode")
	return cmd
}

// solve analyzes grid and prints both answers.
func (c *cli) solve(ctx context.Context, out io.Writer, grid string, asJSON bool) error {
	report, err := c.svc.Analyze(ctx, grid)
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(out).Encode(solveResult{Part1: report.Part1, Part2: report.Part2})
	}
	_, err = fmt.Fprintf(out, "part 1: %d\npart 2: %d\n", report.Part1, report.Part2)
	return err
}

// solveWatch solves the file once, then again after every change.
//
// Each change reads the file afresh and builds a new schematic. A failed
// re-solve is logged and watching continues.
func (c *cli) solveWatch(ctx context.Context, cmd *cobra.Command, args []string, asJSON bool, debounce time.Duration) error {
	if len(args) == 0 || args[0] == "-" {
		return errors.New("--watch needs a file path")
	}
	path := args[0]

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	resolve := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn("read failed", "path", path, "error", err)
			return
		}
		if err := c.solve(ctx, out, string(data), asJSON); err != nil {
			c.logger.Warn("solve failed", "path", path, "error", err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	resolve()

	c.logger.Info("watching for changes", "path", path)
	return watchFile(ctx, path, debounce, resolve)
}
