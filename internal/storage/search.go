/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Query describes a library search. Text matches title, subtitle and path
// case-insensitively as a substring; empty Text matches every chart.
// Failed restricts the result to charts that did not parse.
type Query struct {
	Text   string
	Failed bool
	Limit  int
	Offset int
}

// Search opens the index below root and runs q against it. Results are
// ordered by path.
func Search(ctx context.Context, root string, q Query) ([]Entry, error) {
	db, err := Open(ctx, root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q Query) ([]Entry, error) {
	var args []any
	var sb strings.Builder
	sb.WriteString("SELECT id, path, title, subtitle, key, beats, chords, error, mod_time\nFROM charts\nWHERE 1=1\n")
	if s := strings.ToLower(strings.TrimSpace(q.Text)); s != "" {
		pat := likeContains(escapeLike(s))
		sb.WriteString(` AND ( lower(title) LIKE ? ESCAPE '\' OR lower(subtitle) LIKE ? ESCAPE '\' OR lower(path) LIKE ? ESCAPE '\' )` + "\n")
		args = append(args, pat, pat, pat)
	}
	if q.Failed {
		sb.WriteString(" AND error <> ''\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY path\nLIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var mod string
		if err := rows.Scan(&e.ID, &e.Path, &e.Title, &e.Subtitle, &e.Key, &e.Beats, &e.Chords, &e.Err, &mod); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, mod); err == nil {
			e.ModTime = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func likeContains(s string) string { return "%" + s + "%" }

// escapeLike escapes the LIKE wildcards of s with a backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
