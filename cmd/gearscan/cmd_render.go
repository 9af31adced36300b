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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/gearscan/pkg/ux"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		colorFlag string
		legend    bool
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Print the schematic with part numbers and gears highlighted",
		Long: `Prints the grid unchanged except for styling: part numbers, numbers
that are not parts, counted gears, lone '*' and other symbols each get
their own color. With --color never (or NO_COLOR set, or output that is not
a terminal under --color auto) the output is the input text verbatim.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ux.ParseColorMode(colorFlag)
			if err != nil {
				return err
			}

			sch, rows, err := c.buildInput(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			theme := ux.NewTheme(out, ux.ShouldColor(out, mode))
			renderer := ux.NewGridRenderer(theme)

			text, err := renderer.Render(commandContext(cmd), sch, rows)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprint(out, text); err != nil {
				return err
			}
			if legend {
				_, err = fmt.Fprintf(out, "\n%s\n", renderer.Legend())
			}
			return err
		},
	}

	cmd.Flags().StringVar(&colorFlag, "color", "auto", "Colorize output: auto, always, never")
	cmd.Flags().BoolVar(&legend, "legend", false, "Append a legend of the styles")
	return cmd
}
