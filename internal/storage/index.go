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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"nashchart/internal/domain"
	applog "nashchart/internal/log"
	"nashchart/internal/notation"
	"nashchart/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	IndexDirName  = ".nashchart"
	IndexFileName = "index.sqlite"

	// ChartExt is the extension of notation files picked up by Build.
	ChartExt = ".nash"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	schemaVersion = 1
)

// Entry describes one indexed chart. Path is slash separated and relative
// to the library root. Err holds the parse error of a file that could not
// be read as a chart; the descriptive fields are empty then.
type Entry struct {
	ID       string
	Path     string
	Title    string
	Subtitle string
	Key      string
	Beats    int
	Chords   int
	Err      string
	ModTime  time.Time
}

// Stats summarizes a Build run.
type Stats struct {
	Files  int
	Failed int
}

// IndexPath returns the full path to the library's index database file.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// Open ensures the index exists below root, opens it in WAL mode and
// brings its schema up to date. Callers close the returned DB.
func Open(ctx context.Context, root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("library root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, IndexDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}
	path := IndexPath(root)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS charts (
			id         TEXT PRIMARY KEY,
			path       TEXT NOT NULL UNIQUE,
			title      TEXT NOT NULL DEFAULT '',
			subtitle   TEXT NOT NULL DEFAULT '',
			key        TEXT NOT NULL DEFAULT '',
			beats      INTEGER NOT NULL DEFAULT 0,
			chords     INTEGER NOT NULL DEFAULT 0,
			error      TEXT NOT NULL DEFAULT '',
			mod_time   TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_charts_title ON charts(title);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			schemaVersion, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	case cur > schemaVersion:
		return fmt.Errorf("index schema %d is newer than supported %d", cur, schemaVersion)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Summarize extracts the index fields of a parsed song: the first title,
// subtitle, key and beats setting, and the number of chords written out.
func Summarize(song domain.Song) Entry {
	var e Entry
	for _, s := range song.Sections {
		switch s := s.(type) {
		case domain.Text:
			if s.Kind == domain.TextTitle && e.Title == "" {
				e.Title = s.Text
			}
			if s.Kind == domain.TextSubtitle && e.Subtitle == "" {
				e.Subtitle = s.Text
			}
		case domain.Key:
			if e.Key == "" {
				e.Key = s.Name
			}
		case domain.Beats:
			if e.Beats == 0 {
				e.Beats = s.Count
			}
		case domain.ChordSequence:
			for _, c := range s.Chords {
				if !c.IsFiller() {
					e.Chords++
				}
			}
		}
	}
	return e
}

// Scan parses every chart file below root. Files that fail to parse are
// returned with Err set. Directories starting with '.' are skipped.
func Scan(root string) ([]Entry, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "scan")
	var out []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ChartExt) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read chart: %w", err)
		}
		e := Entry{}
		if song, perr := notation.Parse(rel, string(src)); perr != nil {
			e.Err = perr.Error()
			l.Warn("chart does not parse", slog.String("path", rel), slog.Any("err", perr))
		} else {
			e = Summarize(song)
		}
		e.Path = rel
		e.ModTime = info.ModTime().UTC()
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return out, nil
}

// Build rescans root and replaces the index content. Charts keep their id
// across rebuilds as long as their path does not change.
func Build(ctx context.Context, root string) (Stats, error) {
	start := time.Now()
	l := applog.WithOperation(applog.WithComponent("storage"), "build").With(slog.String("root", root))
	entries, err := Scan(root)
	if err != nil {
		return Stats{}, err
	}
	db, err := Open(ctx, root)
	if err != nil {
		return Stats{}, err
	}
	defer db.Close()

	ids, err := existingIDs(ctx, db)
	if err != nil {
		return Stats{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM charts;"); err != nil {
		_ = tx.Rollback()
		return Stats{}, fmt.Errorf("clear charts: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO charts(id, path, title, subtitle, key, beats, chords, error, mod_time, indexed_at)
		VALUES(?,?,?,?,?,?,?,?,?,?);`)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var st Stats
	for _, e := range entries {
		id, ok := ids[e.Path]
		if !ok {
			id = uuid.NewString()
		}
		if _, err := ins.ExecContext(ctx, id, e.Path, e.Title, e.Subtitle, e.Key, e.Beats, e.Chords, e.Err,
			e.ModTime.Format(time.RFC3339Nano), now); err != nil {
			_ = tx.Rollback()
			return Stats{}, fmt.Errorf("insert chart: %w", err)
		}
		st.Files++
		if e.Err != "" {
			st.Failed++
		}
	}
	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit: %w", err)
	}
	applog.Timed(l, start, "index built", slog.Int("files", st.Files), slog.Int("failed", st.Failed))
	return st, nil
}

func existingIDs(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT path, id FROM charts`)
	if err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var p, id string
		if err := rows.Scan(&p, &id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out[p] = id
	}
	return out, rows.Err()
}
