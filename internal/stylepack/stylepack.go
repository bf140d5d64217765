/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "nashchart/internal/log"
	"nashchart/internal/version"
)

// ManifestName is the informational file at the root of every pack.
const ManifestName = "stylepack.manifest.txt"

// maxStyleSize bounds a single style file read from a pack.
const maxStyleSize = 1 << 20

// Export zips the style files of dir into destZip. Only files with a style
// extension are packed; the archive is flat and starts with a manifest.
// An empty or missing dir still produces an archive with the manifest.
func Export(dir, destZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("style dir is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("destination zip is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read style dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZip)

	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("nashchart style pack\nCreated: %s\nVersion: %s\n\nEach file defines one chart style.\n",
		time.Now().Format(time.RFC3339), version.String())
	w, err := zw.Create(ManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	for _, e := range entries {
		if _, ok := SyntaxFor(e.Name()); !ok || e.IsDir() {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, e.Name()), e.Name()); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return added, fmt.Errorf("build zip: %w", err)
		}
		added++
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("files", added), slog.String("zip", destZip))
	return added, nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}

// Install extracts the style files of a pack into dir. Entries are placed
// flat by base name. Existing files are not overwritten and files that do
// not validate are skipped. It returns the number of files written.
func Install(packZip, dir string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("style dir is required")
	}
	if strings.TrimSpace(packZip) == "" {
		return 0, errors.New("pack zip is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure style dir: %w", err)
	}
	r, err := zip.OpenReader(packZip)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(f.Name)
		syn, ok := SyntaxFor(name)
		if !ok || name == ManifestName {
			continue
		}
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return installed, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if _, err := Parse(data, syn, strings.TrimSuffix(name, filepath.Ext(name))); err != nil {
			l.Warn("skip invalid style", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, fmt.Errorf("write %s: %w", target, err)
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxStyleSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxStyleSize {
		return nil, fmt.Errorf("style file larger than %d bytes", maxStyleSize)
	}
	return data, nil
}
