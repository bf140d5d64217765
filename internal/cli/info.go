/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nashchart/internal/domain"
	"nashchart/internal/quiz"
	"nashchart/internal/stylepack"
	"nashchart/internal/textlayout"
	"nashchart/internal/version"
)

func (c *CLI) newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys chords can be rendered in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := domain.LoadKeyTable()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range keys.Names() {
				k, err := keys.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, quiz.KeyLabel(name), strings.Join(k.Keys[:], " "))
			}
			return tw.Flush()
		},
	}
}

func (c *CLI) newStylesCmd() *cobra.Command {
	var dir string
	stylesDir := func() (string, error) {
		if dir != "" {
			return dir, nil
		}
		if c.cfg.Styles.Dir != "" {
			return c.cfg.Styles.Dir, nil
		}
		return "", errors.New("no style directory: set styles.dir in the config or pass --dir")
	}

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List chart styles; export or install style packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = c.cfg.Styles.Dir
			}
			sheet, err := stylepack.Sheet(dir)
			if err != nil {
				return err
			}
			def := c.cfg.Render.Style
			for i, name := range sheet.Names() {
				mark := " "
				if name == def {
					mark = "*"
				}
				src := "user"
				if _, user := sheet.User[name]; !user {
					src = fmt.Sprintf("builtin %d", i)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", mark, name, src)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "style directory (default styles.dir from the config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "export <pack.zip>",
		Short: "Bundle the style directory into a zip pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := stylesDir()
			if err != nil {
				return err
			}
			n, err := stylepack.Export(d, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d styles to %s\n", n, args[0])
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "install <pack.zip>",
		Short: "Install the styles of a zip pack into the style directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := stylesDir()
			if err != nil {
				return err
			}
			c.noteInput(args[0])
			n, err := stylepack.Install(args[0], d)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "installed %d styles into %s\n", n, d)
			return err
		},
	})
	return cmd
}

func (c *CLI) newCalibrateCmd() *cobra.Command {
	var styleName string
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Print the calibrated glyph bounds of a style's chord fonts",
		Long: `Calibrate loads or computes the ink bounds of every notation glyph in the
chord fonts of a style and prints them with the cache file they are kept in.
Bounds are in page pixels relative to the pen position on the baseline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("style") {
				styleName = c.cfg.Render.Style
			}
			st, err := c.style(styleName)
			if err != nil {
				return err
			}
			lib, err := c.fonts()
			if err != nil {
				return err
			}
			_, cache := c.metrics(lib)
			out := cmd.OutOrStdout()
			for _, p := range []struct {
				role string
				font textlayout.FontSpec
			}{{"chord", st.Chord.Font}, {"chord_small", st.ChordSmall.Font}} {
				path := cache.Path(p.font)
				if path == "" {
					path = "memory only"
				}
				fmt.Fprintf(out, "%s %s (%s)\n", p.role, textlayout.CacheKey(p.font), path)
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "glyph\tx\ty\tw\th\t")
				for _, r := range textlayout.GlyphAlphabet {
					b, ok := cache.Bounds(p.font, r)
					if !ok {
						continue
					}
					fmt.Fprintf(tw, "%c\t%g\t%g\t%g\t%g\t\n", r, b.X, b.Y, b.W, b.H)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&styleName, "style", "s", "", "style name or index")
	return cmd
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "nashchart %s\n", version.String())
			return err
		},
	}
}
