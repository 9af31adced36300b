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
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/gearscan/services/schematic"
)

// gearsResult is the --json form of gears output.
type gearsResult struct {
	Gears []schematic.GearReport `json:"gears"`
	Total uint64                 `json:"total"`
}

func (c *cli) gearsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "gears [file|-]",
		Short: "List every '*' with its adjacent numbers and ratio",
		Long: `Lists each '*' in row-major order. A '*' adjacent to exactly two
numbers is a gear and its ratio counts toward the part 2 total; any other
'*' is listed as not counted. Rows and columns are 1-based.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTelemetry(commandContext(cmd), c.cfg.Telemetry, func(ctx context.Context) error {
				grid, _, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				report, err := c.svc.Analyze(ctx, grid)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return json.NewEncoder(out).Encode(gearsResult{Gears: report.Gears, Total: report.Part2})
				}
				for _, g := range report.Gears {
					fmt.Fprintln(out, formatGear(g))
				}
				_, err = fmt.Fprintf(out, "total: %d\n", report.Part2)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit gears and total as JSON")
	return cmd
}

// formatGear renders one '*' as "row R col C: a * b = ratio", or with
// "(not counted)" when it is not a gear.
func formatGear(g schematic.GearReport) string {
	nums := make([]string, len(g.Numbers))
	for i, n := range g.Numbers {
		nums[i] = strconv.FormatUint(n, 10)
	}
	head := fmt.Sprintf("row %d col %d: ", g.Row+1, g.Col+1)
	if g.Counted {
		return head + strings.Join(nums, " * ") + " = " + strconv.FormatUint(g.Ratio, 10)
	}
	if len(nums) == 0 {
		return head + "no numbers (not counted)"
	}
	return head + strings.Join(nums, ", ") + " (not counted)"
}
