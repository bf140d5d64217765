/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nashchart/internal/domain"
	"nashchart/internal/export"
	applog "nashchart/internal/log"
	"nashchart/internal/notation"
	"nashchart/internal/storage"
)

type renderOpts struct {
	output string
	format string
	style  string
	key    string
	dpi    int
}

func (c *CLI) newRenderCmd() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <chart.nash>",
		Short: "Render a chord chart to PNG, PDF, SVG or text",
		Long: `Render parses a chart in Nashville number notation, lays it out with the
selected style and writes it in the requested format. Multi-page PNG and SVG
output is written as one file per page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("style") {
				opts.style = c.cfg.Render.Style
			}
			if !cmd.Flags().Changed("key") {
				opts.key = c.cfg.Render.Key
			}
			if !cmd.Flags().Changed("dpi") {
				opts.dpi = c.cfg.Render.DPI
			}
			f, err := c.outputFormat(cmd, opts.format, opts.output)
			if err != nil {
				return err
			}
			out := opts.output
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + string(f)
			}
			return c.render(cmd, args[0], out, f, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default is the input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, pdf, svg or txt")
	cmd.Flags().StringVarP(&opts.style, "style", "s", "", "style name or index")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "render chords as letters in this key, e.g. b-flat")
	cmd.Flags().IntVar(&opts.dpi, "dpi", 300, "resolution of raster output")
	return cmd
}

// outputFormat picks the --format flag, then the output extension, then
// the configured default.
func (c *CLI) outputFormat(cmd *cobra.Command, flag, output string) (export.Format, error) {
	if cmd.Flags().Changed("format") {
		return export.ParseFormat(flag)
	}
	if output != "" {
		if f, ok := export.FormatFromPath(output); ok {
			return f, nil
		}
	}
	return export.ParseFormat(c.cfg.Render.Format)
}

func (c *CLI) render(cmd *cobra.Command, in, out string, f export.Format, opts renderOpts) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "render")
	start := time.Now()
	c.noteInput(in)

	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read chart: %w", err)
	}
	song, err := notation.Parse(in, string(src))
	if err != nil {
		return err
	}
	e, lib, err := c.engine(opts.style, opts.key)
	if err != nil {
		return err
	}
	chart, err := e.Layout(song)
	if err != nil {
		return err
	}
	err = export.Write(out, f, song, chart, export.Options{
		DPI:   opts.dpi,
		Fonts: lib,
		Title: title(song, in),
		Key:   opts.key,
		Keys:  e.Keys,
	})
	if err != nil {
		return err
	}
	applog.Timed(l, start, "chart rendered", slog.String("in", in), slog.String("out", out), slog.Int("pages", len(chart.Pages)))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// title is the first title of song, or the input file name without its
// extension.
func title(song domain.Song, path string) string {
	if t := storage.Summarize(song).Title; t != "" {
		return t
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
