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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"nashchart/internal/notation"
)

func writeChart(t *testing.T, root, rel, src string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func library(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeChart(t, root, "alpha.nash", "title:\"Alpha\"\nkey:\"g\"\nbeats:4\n1 4 5\n")
	writeChart(t, root, "sub/b.nash", "subtitle:\"Bravo Live\"\n(1 2) . 6-\n")
	writeChart(t, root, "bad.nash", "(1 2\n")
	writeChart(t, root, "100%.nash", "title:\"Percent\"\n1\n")
	writeChart(t, root, "notes.txt", "not a chart")
	writeChart(t, root, ".hidden/x.nash", "1\n")
	return root
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestSummarize(t *testing.T) {
	song, err := notation.Parse("t", "title:\"A\"\ntitle:\"B\"\nsubtitle:\"S\"\nkey:\"d\"\nbeats:3\n1 . 2/5\nkey:\"g\"\n4\n")
	if err != nil {
		t.Fatal(err)
	}
	e := Summarize(song)
	if e.Title != "A" || e.Subtitle != "S" || e.Key != "d" || e.Beats != 3 || e.Chords != 3 {
		t.Fatalf("Summarize = %+v", e)
	}
}

func TestBuild_WALAndVersion(t *testing.T) {
	root := library(t)
	st, err := Build(ctx(t), root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if st.Files != 4 || st.Failed != 1 {
		t.Fatalf("stats = %+v, want 4 files and 1 failure", st)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(IndexPath(root)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	var mode string
	if err := db.QueryRowContext(ctx(t), "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal mode = %s", mode)
	}
	var schema int
	if err := db.QueryRowContext(ctx(t), "SELECT schema FROM version WHERE id=1").Scan(&schema); err != nil || schema != schemaVersion {
		t.Errorf("schema = %d, %v", schema, err)
	}
}

func TestSearch(t *testing.T) {
	root := library(t)
	if _, err := Build(ctx(t), root); err != nil {
		t.Fatalf("Build: %v", err)
	}
	paths := func(es []Entry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Path)
		}
		return out
	}
	cases := []struct {
		q    Query
		want string
	}{
		{Query{}, "100%.nash alpha.nash bad.nash sub/b.nash"},
		{Query{Text: "ALPHA"}, "alpha.nash"},
		{Query{Text: "bravo"}, "sub/b.nash"},
		{Query{Text: "sub/"}, "sub/b.nash"},
		{Query{Text: "%"}, "100%.nash"},
		{Query{Text: "a_p"}, ""},
		{Query{Failed: true}, "bad.nash"},
		{Query{Limit: 2, Offset: 1}, "alpha.nash bad.nash"},
	}
	for _, c := range cases {
		got, err := Search(ctx(t), root, c.q)
		if err != nil {
			t.Fatalf("Search(%+v): %v", c.q, err)
		}
		if s := strings.Join(paths(got), " "); s != c.want {
			t.Errorf("Search(%+v) = %q, want %q", c.q, s, c.want)
		}
	}

	got, _ := Search(ctx(t), root, Query{Text: "alpha"})
	a := got[0]
	if a.Title != "Alpha" || a.Key != "g" || a.Beats != 4 || a.Chords != 3 || a.Err != "" {
		t.Errorf("alpha entry = %+v", a)
	}
	if _, err := uuid.Parse(a.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", a.ID, err)
	}
	if a.ModTime.IsZero() {
		t.Error("mod time not stored")
	}
	bad, _ := Search(ctx(t), root, Query{Failed: true})
	if !strings.Contains(bad[0].Err, "missing closing parenthesis") {
		t.Errorf("bad entry error = %q", bad[0].Err)
	}
}

func TestBuild_KeepsIDs(t *testing.T) {
	root := library(t)
	if _, err := Build(ctx(t), root); err != nil {
		t.Fatal(err)
	}
	before, _ := Search(ctx(t), root, Query{Text: "alpha"})
	writeChart(t, root, "new.nash", "1 2 3\n")
	st, err := Build(ctx(t), root)
	if err != nil {
		t.Fatal(err)
	}
	if st.Files != 5 {
		t.Errorf("files = %d", st.Files)
	}
	after, _ := Search(ctx(t), root, Query{Text: "alpha"})
	if before[0].ID != after[0].ID {
		t.Errorf("id changed on rebuild: %s -> %s", before[0].ID, after[0].ID)
	}
}

func TestOpen_RequiresRoot(t *testing.T) {
	if _, err := Open(ctx(t), "  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}
