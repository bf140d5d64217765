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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	applog "nashchart/internal/log"
	"nashchart/internal/storage"
)

func (c *CLI) newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <dir>",
		Short: "Index every chart below a directory",
		Long: `Index parses every .nash file below dir and records its title, subtitle,
first key, beats per bar and chord count in dir/.nashchart/index.sqlite.
Charts that fail to parse are recorded with their error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := applog.WithOperation(applog.WithComponent("cli"), "index")
			start := time.Now()
			c.noteInput(args[0])
			st, err := storage.Build(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			applog.Timed(l, start, "library indexed", slog.String("root", args[0]), slog.Int("files", st.Files))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "indexed %d charts (%d failed) into %s\n", st.Files, st.Failed, storage.IndexPath(args[0]))
			return err
		},
	}
}

func (c *CLI) newSearchCmd() *cobra.Command {
	var q storage.Query
	cmd := &cobra.Command{
		Use:   "search <dir> [text...]",
		Short: "Search the chart index of a directory",
		Long: `Search matches text against the title, subtitle and path of every indexed
chart, ignoring case. Without text every chart is listed. Run index first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Text = strings.Join(args[1:], " ")
			res, err := storage.Search(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range res {
				if e.Err != "" {
					fmt.Fprintf(tw, "%s\terror: %s\t\t\n", e.Path, e.Err)
					continue
				}
				key := e.Key
				if key == "" {
					key = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d chords\n", e.Path, e.Title, key, e.Chords)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&q.Failed, "failed", false, "only list charts that failed to parse")
	cmd.Flags().IntVar(&q.Limit, "limit", 100, "maximum number of results")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "skip this many results")
	return cmd
}
