/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli implements the nashchart command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nashchart/internal/config"
	"nashchart/internal/crash"
	"nashchart/internal/domain"
	"nashchart/internal/layout"
	applog "nashchart/internal/log"
	"nashchart/internal/stylepack"
	"nashchart/internal/textlayout"
	"nashchart/internal/version"
)

// Font families registered for the configured chord and text fonts.
const (
	chordFamily = "Custom Chord"
	textFamily  = "Custom Text"
)

// CLI holds state shared by all commands. The config is loaded once per
// invocation, before the selected command runs.
type CLI struct {
	Report *crash.Report

	configPath string
	verbose    bool
	logOutput  io.Writer
	cfg        config.AppConfig
}

// New returns a CLI that logs to w. rep, when non-nil, is filled in with
// the running command and its input for crash reports.
func New(w io.Writer, rep *crash.Report) *CLI {
	return &CLI{Report: rep, logOutput: w, cfg: config.Defaults()}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "nashchart",
		Short:         "Render Nashville number chord charts",
		Long:          `nashchart turns chord charts written in Nashville number notation into paginated PNG, PDF, SVG or plain text charts, and generates chord reading quizzes.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetVersionTemplate("nashchart {{.Version}}\n")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is the per-user config path)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.newRenderCmd())
	root.AddCommand(c.newQuizCmd())
	root.AddCommand(c.newKeysCmd())
	root.AddCommand(c.newStylesCmd())
	root.AddCommand(c.newCalibrateCmd())
	root.AddCommand(c.newIndexCmd())
	root.AddCommand(c.newSearchCmd())
	root.AddCommand(c.newVersionCmd())
	return root
}

func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	opts := cfg.LogOptions()
	if c.verbose {
		opts.Level = "debug"
	}
	opts.Output = c.logOutput
	applog.Init(opts)
	if c.Report != nil {
		c.Report.Command = cmd.CommandPath()
		if c.Report.Dir == "" && !cfg.Cache.Disabled {
			c.Report.Dir = filepath.Join(cfg.Cache.Dir, "crash")
		}
	}
	applog.WithComponent("cli").Debug("config loaded", slog.String("command", cmd.CommandPath()), slog.String("style", cfg.Render.Style))
	return nil
}

func (c *CLI) noteInput(path string) {
	if c.Report != nil {
		c.Report.Input = path
	}
}

// fonts returns the bundled fonts plus the configured chord and text fonts.
func (c *CLI) fonts() (*textlayout.FontLibrary, error) {
	lib := textlayout.DefaultLibrary()
	for _, f := range []struct{ family, path string }{
		{chordFamily, c.cfg.Render.ChordFont},
		{textFamily, c.cfg.Render.TextFont},
	} {
		if strings.TrimSpace(f.path) == "" {
			continue
		}
		if err := lib.LoadTTF(f.family, 400, false, f.path); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// style resolves name against the builtin styles and the user style
// directory and points its paints at the configured fonts.
func (c *CLI) style(name string) (textlayout.Style, error) {
	sheet, err := stylepack.Sheet(c.cfg.Styles.Dir)
	if err != nil {
		return textlayout.Style{}, err
	}
	st, ok := sheet.Resolve(name)
	if !ok {
		return textlayout.Style{}, fmt.Errorf("unknown style %q (have %s)", name, strings.Join(sheet.Names(), ", "))
	}
	if c.cfg.Render.ChordFont != "" {
		for _, p := range []*textlayout.Paint{&st.Chord, &st.ChordSmall} {
			p.Font.Family = chordFamily
		}
	}
	if c.cfg.Render.TextFont != "" {
		for _, p := range []*textlayout.Paint{&st.Title, &st.Subtitle, &st.Text, &st.Small} {
			p.Font.Family = textFamily
		}
	}
	return st, nil
}

// metrics measures with lib and corrects glyphs through the configured
// glyph bounds cache.
func (c *CLI) metrics(lib *textlayout.FontLibrary) (textlayout.FontMetrics, *textlayout.GlyphBoundsCache) {
	p := textlayout.NewOTProvider(lib)
	cache := textlayout.NewGlyphBoundsCache(p, c.cfg.GlyphCacheDir())
	return textlayout.FontMetrics{Provider: p, Cache: cache}, cache
}

// engine builds a layout engine for the named style starting in key.
func (c *CLI) engine(styleName, key string) (*layout.Engine, *textlayout.FontLibrary, error) {
	lib, err := c.fonts()
	if err != nil {
		return nil, nil, err
	}
	st, err := c.style(styleName)
	if err != nil {
		return nil, nil, err
	}
	keys, err := domain.LoadKeyTable()
	if err != nil {
		return nil, nil, err
	}
	if _, err := keys.Lookup(key); err != nil {
		var uk *domain.UnknownKeyError
		if errors.As(err, &uk) {
			return nil, nil, fmt.Errorf("%w (have %s)", err, strings.Join(keys.Names(), ", "))
		}
		return nil, nil, err
	}
	m, _ := c.metrics(lib)
	e := layout.New(st, m, keys)
	e.Key = key
	return e, lib, nil
}
