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
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/gearscan/services/schematic"
)

func (c *cli) tokensCmd() *cobra.Command {
	var (
		asJSON bool
		rows   []int
	)

	cmd := &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "Dump the token index row by row",
		Long: `Prints every indexed token: numbers with their value and symbols with
their character. Spans are 0-based half-open rune columns. Use --row to
restrict output to particular rows (0-based, repeatable).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range rows {
				if r < 0 {
					return fmt.Errorf("invalid --row %d: rows are 0-based", r)
				}
			}
			return c.withTelemetry(commandContext(cmd), c.cfg.Telemetry, func(ctx context.Context) error {
				grid, _, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				result, err := c.svc.Tokens(ctx, grid, rows...)
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(schematic.TokensResponse{Rows: result})
				}
				return writeTokens(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the token listing as JSON")
	cmd.Flags().IntSliceVar(&rows, "row", nil, "Only list these rows (0-based)")
	return cmd
}

// writeTokens prints one line per row:
//
//	row 0: [0,3) 467  [5,8) 114
//	row 1: [3,4) "*" gear
func writeTokens(w io.Writer, rows []schematic.RowTokens) error {
	for _, rt := range rows {
		if _, err := fmt.Fprintf(w, "row %d:", rt.Row); err != nil {
			return err
		}
		for _, t := range rt.Tokens {
			if t.Kind == "number" {
				fmt.Fprintf(w, " [%d,%d) %d", t.Start, t.End, t.Value)
				continue
			}
			fmt.Fprintf(w, " [%d,%d) %q %s", t.Start, t.End, t.Char, t.Symbol)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
