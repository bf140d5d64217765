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
	"os"
	"path/filepath"
	"testing"

	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

const roomyYAML = `name: roomy
base: large
bar_pad_y: 16
chord:
  font: {family: Go, size: 30, weight: 700}
  color: {r: 20, g: 30, b: 40, a: 255}
`

const inkTOML = `base = "compact"
mean_chord_width = 28.0

[bar_frame.stroke]
width = 1.5
color = { r = 200, g = 0, b = 0, a = 255 }
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestParseYAML_OverridesBase(t *testing.T) {
	st, err := Parse([]byte(roomyYAML), YAML, "ignored")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	large, _ := textlayout.GetStyle("large")
	if st.Name != "roomy" {
		t.Errorf("name = %q", st.Name)
	}
	if st.BarPadY != 16 {
		t.Errorf("bar_pad_y = %v", st.BarPadY)
	}
	if st.Chord.Font.SizePt != 30 || !st.Chord.Font.Bold() {
		t.Errorf("chord font = %+v", st.Chord.Font)
	}
	if st.Chord.Color != (vector.Color{R: 20, G: 30, B: 40, A: 255}) {
		t.Errorf("chord color = %+v", st.Chord.Color)
	}
	if st.ChordHeight != large.ChordHeight || st.MeanChordWidth != large.MeanChordWidth {
		t.Errorf("unset fields should come from the base style")
	}
	if st.Page != textlayout.DefaultPage {
		t.Errorf("page = %+v", st.Page)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	p := write(t, t.TempDir(), "ink.toml", inkTOML)
	st, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if st.Name != "ink" {
		t.Errorf("name = %q, want file stem", st.Name)
	}
	if st.MeanChordWidth != 28 {
		t.Errorf("mean_chord_width = %v", st.MeanChordWidth)
	}
	if st.BarFrame.Stroke.Width != 1.5 || st.BarFrame.Stroke.Color.R != 200 {
		t.Errorf("bar frame stroke = %+v", st.BarFrame.Stroke)
	}
	compact := textlayout.DefaultStyle()
	if st.ChordHeight != compact.ChordHeight {
		t.Errorf("chord_height = %v", st.ChordHeight)
	}
}

func TestParse_HexColors(t *testing.T) {
	st, err := Parse([]byte("chord:\n  color: \"#336699\"\n"), YAML, "hex")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if st.Chord.Color != (vector.Color{R: 0x33, G: 0x66, B: 0x99, A: 255}) {
		t.Errorf("yaml chord color = %+v", st.Chord.Color)
	}
	st, err = Parse([]byte("[bar_frame.stroke]\ncolor = \"#f00\"\nwidth = 2.0\n"), TOML, "hex")
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	if st.BarFrame.Stroke.Color != (vector.Color{R: 255, A: 255}) {
		t.Errorf("toml stroke color = %+v", st.BarFrame.Stroke.Color)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "colour: red\n",
		"negative":       "bar_pad_x: -3\n",
		"channel range":  "chord: {color: {r: 300}}\n",
		"bad font field": "chord: {font: {size: 0}}\n",
		"bad hex color":  "chord: {color: \"#12\"}\n",
	}
	for name, body := range cases {
		_, err := Parse([]byte(body), YAML, "x")
		var ie *InvalidStyleError
		if !errors.As(err, &ie) || len(ie.Problems) == 0 {
			t.Errorf("%s: err = %v, want InvalidStyleError", name, err)
		}
	}
	if _, err := Parse([]byte("base: huge\n"), YAML, "x"); err == nil {
		t.Error("unknown base should fail")
	}
}

func TestLoadDir_Sheet(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "roomy.yaml", roomyYAML)
	write(t, dir, "ink.toml", inkTOML)
	write(t, dir, "notes.txt", "not a style")
	sheet, err := Sheet(dir)
	if err != nil {
		t.Fatalf("Sheet: %v", err)
	}
	want := []string{"compact", "large", "ink", "roomy"}
	got := sheet.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
	if st, ok := sheet.Resolve("roomy"); !ok || st.BarPadY != 16 {
		t.Errorf("Resolve(roomy) = %+v, %v", st, ok)
	}
	if m, err := LoadDir(filepath.Join(dir, "missing")); err != nil || len(m) != 0 {
		t.Errorf("missing dir: %v, %v", m, err)
	}
}

func TestExportAndInstall(t *testing.T) {
	src := t.TempDir()
	write(t, src, "roomy.yaml", roomyYAML)
	write(t, src, "ink.toml", inkTOML)
	write(t, src, "readme.txt", "skip me")

	zipPath := filepath.Join(t.TempDir(), "packs", "out.zip")
	n, err := Export(src, zipPath)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d files, want 2", n)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(r.File) != 3 || r.File[0].Name != ManifestName {
		t.Errorf("zip entries = %d, first %q", len(r.File), r.File[0].Name)
	}
	_ = r.Close()

	dst := t.TempDir()
	write(t, dst, "ink.toml", "mean_chord_width = 99.0\n")
	installed, err := Install(zipPath, dst)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if installed != 1 {
		t.Fatalf("installed = %d, want 1 (ink.toml exists)", installed)
	}
	if _, err := os.Stat(filepath.Join(dst, "roomy.yaml")); err != nil {
		t.Fatalf("roomy.yaml not installed: %v", err)
	}
	st, err := LoadFile(filepath.Join(dst, "ink.toml"))
	if err != nil || st.MeanChordWidth != 99 {
		t.Errorf("existing file was overwritten: %+v, %v", st.MeanChordWidth, err)
	}
}

func TestInstall_SkipsInvalidAndFlattens(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "bad.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"../../escape.yaml": "bar_pad_y: 4\n",
		"nested/broken.yml": "bar_pad_y: -1\n",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte(body))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	dst := t.TempDir()
	n, err := Install(zipPath, dst)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if n != 1 {
		t.Fatalf("installed = %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(dst, "escape.yaml")); err != nil {
		t.Errorf("escape.yaml should land inside dst: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "broken.yml")); !os.IsNotExist(err) {
		t.Errorf("invalid style was installed")
	}
}
