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
	"strings"

	"github.com/spf13/cobra"

	"nashchart/internal/export"
	applog "nashchart/internal/log"
	"nashchart/internal/quiz"
)

type quizOpts struct {
	output  string
	format  string
	style   string
	seed    int64
	degrees string
	keys    string
	chords  int
	noSlash bool
	dpi     int
}

func (c *CLI) newQuizCmd() *cobra.Command {
	var opts quizOpts
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a page of chord reading exercises",
		Long: `Quiz fills one page with sets of random chord sequences. Each set shows the
sequence as numbers followed by the same chords in each configured key.
Common degrees are drawn more often than rare ones and no chord repeats
within two positions. The same seed always produces the same page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := c.cfg.Quiz
			flags := cmd.Flags()
			if !flags.Changed("seed") {
				opts.seed = q.Seed
			}
			if !flags.Changed("degrees") {
				opts.degrees = q.Degrees
			}
			if !flags.Changed("keys") {
				opts.keys = q.Keys
			}
			if !flags.Changed("chords") {
				opts.chords = q.ChordsPerRow
			}
			if !flags.Changed("no-slash") {
				opts.noSlash = !q.SlashChords
			}
			if !flags.Changed("style") {
				opts.style = c.cfg.Render.Style
			}
			if !flags.Changed("dpi") {
				opts.dpi = c.cfg.Render.DPI
			}
			f, err := c.outputFormat(cmd, opts.format, opts.output)
			if err != nil {
				return err
			}
			if opts.output == "" {
				opts.output = "quiz." + string(f)
			}
			return c.quiz(cmd, f, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default quiz.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, pdf, svg or txt")
	cmd.Flags().StringVarP(&opts.style, "style", "s", "", "style name or index")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed; 0 derives one from the clock")
	cmd.Flags().StringVar(&opts.degrees, "degrees", quiz.DefaultDegrees, "degrees to draw from, most common first")
	cmd.Flags().StringVar(&opts.keys, "keys", quiz.DefaultKeys, "keys shown below each numbers row")
	cmd.Flags().IntVar(&opts.chords, "chords", 12, "chords per row")
	cmd.Flags().BoolVar(&opts.noSlash, "no-slash", false, "never generate slash chords")
	cmd.Flags().IntVar(&opts.dpi, "dpi", 300, "resolution of raster output")
	return cmd
}

func (c *CLI) quiz(cmd *cobra.Command, f export.Format, opts quizOpts) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "quiz")
	degrees, err := quiz.ParseDegrees(opts.degrees)
	if err != nil {
		return err
	}
	g, err := quiz.NewGenerator(opts.seed, degrees, !opts.noSlash)
	if err != nil {
		return err
	}
	e, lib, err := c.engine(opts.style, "")
	if err != nil {
		return err
	}
	song, chart, err := quiz.Page(e, g, quiz.Options{ChordsPerRow: opts.chords, Keys: strings.Fields(opts.keys)})
	if err != nil {
		return err
	}
	err = export.Write(opts.output, f, song, chart, export.Options{
		DPI:   opts.dpi,
		Fonts: lib,
		Title: "Chord quiz",
		Keys:  e.Keys,
	})
	if err != nil {
		return err
	}
	l.Info("quiz written", slog.String("out", opts.output), slog.Int64("seed", g.Seed()))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (seed %d)\n", opts.output, g.Seed())
	return err
}
