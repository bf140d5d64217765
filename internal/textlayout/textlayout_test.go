/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/image/font"

	"nashchart/internal/vector"
)

func TestBuiltinStyles(t *testing.T) {
	names := ListStyles()
	if len(names) != 2 || names[0] != "compact" || names[1] != "large" {
		t.Fatalf("unexpected builtin styles: %v", names)
	}
	byIndex, ok := GetStyle("1")
	if !ok || byIndex.Name != "large" {
		t.Fatalf("style by index: %+v %v", byIndex.Name, ok)
	}
	c, _ := GetStyle("compact")
	if c.MeanChordWidth != 26 || c.ChordHeight != 30 || c.BarFrame.Stroke.Width != 2 {
		t.Fatalf("compact constants changed: %+v", c)
	}
	if c.Chord.Font.SizePt <= c.ChordSmall.Font.SizePt {
		t.Fatalf("small chord font should be smaller")
	}
	if _, ok := GetStyle("Dialogue"); ok {
		t.Fatalf("unexpected style")
	}
}

func TestStyleSheet_UserShadowsBuiltin(t *testing.T) {
	big, _ := GetStyle("large")
	ss := NewStyleSheet().WithUser(map[string]Style{"compact": big, "zine": {ChordHeight: 12}})
	got, ok := ss.Resolve("compact")
	if !ok || got.ChordHeight != big.ChordHeight || got.Name != "compact" {
		t.Fatalf("user override not applied: %+v", got)
	}
	zine, _ := ss.Resolve("zine")
	if zine.Page != DefaultPage || zine.Margin != DefaultMargin {
		t.Fatalf("user style not normalized: %+v", zine)
	}
	if def, ok := ss.Resolve(""); !ok || def.Name != "compact" {
		t.Fatalf("default style: %+v", def.Name)
	}
	names := ss.Names()
	if len(names) != 3 || names[0] != "compact" || names[1] != "large" || names[2] != "zine" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestWrap(t *testing.T) {
	m := FontMetrics{}
	if w := m.Advance(FontSpec{}, "ABC"); w != 21 {
		t.Fatalf("7x13 face width = %v, want 21", w)
	}
	lines := Wrap(m, FontSpec{}, "Hello world from Go", 50)
	if len(lines) != 3 || lines[0] != "Hello" || lines[2] != "from Go" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
	if got := Wrap(m, FontSpec{}, "a\nb", 0); len(got) != 2 {
		t.Fatalf("newline not kept: %q", got)
	}
	if got := Wrap(m, FontSpec{}, "unbreakable", 10); len(got) != 1 || got[0] != "unbreakable" {
		t.Fatalf("long word split: %q", got)
	}
}

func TestOTProvider_GoFontsAndFallback(t *testing.T) {
	lib := DefaultLibrary()
	p := NewOTProvider(lib)
	spec := FontSpec{Family: DefaultFamily, SizePt: 24}
	f1, m := p.Resolve(spec)
	f2, _ := p.Resolve(spec)
	if f1 != f2 {
		t.Fatalf("face not reused")
	}
	if m.Ascent <= 13 {
		t.Fatalf("24pt ascent too small: %+v", m)
	}
	if w := (FontMetrics{Provider: p}).Advance(FontSpec{Family: "Nonexistent"}, "Hello"); w != 35 {
		t.Fatalf("fallback width = %v, want 35", w)
	}
	name, data, ok := lib.FontData(FontSpec{Family: DefaultFamily, Weight: 700})
	if !ok || name != "Go-700" || len(data) == 0 {
		t.Fatalf("FontData = %q %d %v", name, len(data), ok)
	}
	if name, _, _ := lib.FontData(FontSpec{Family: DefaultFamily, Weight: 800, Italic: true}); name != "Go-700i" {
		t.Fatalf("closest match = %q", name)
	}
}

type fakeMetrics struct{}

func (fakeMetrics) Advance(_ FontSpec, s string) float32 { return float32(7 * len([]rune(s))) }
func (fakeMetrics) Bounds(_ FontSpec, r rune) (vector.Rect, bool) {
	if r == '♭' {
		return vector.R(2, -8, 4, 10), true
	}
	return vector.Rect{}, false
}
func (fakeMetrics) Metrics(FontSpec) Metrics { return Metrics{Ascent: 10, Descent: 3} }

func TestPlace_AdjustsCalibratedGlyphs(t *testing.T) {
	glyphs, w := Place(fakeMetrics{}, FontSpec{}, "1♭23")
	want := []Glyph{{"1", 0}, {"♭", 6}, {"23", 13}}
	if len(glyphs) != len(want) {
		t.Fatalf("got %+v", glyphs)
	}
	for i := range want {
		if glyphs[i] != want[i] {
			t.Errorf("glyph %d = %+v, want %+v", i, glyphs[i], want[i])
		}
	}
	if w != 27 {
		t.Fatalf("width = %v, want 27", w)
	}
}

func TestCalibrate_BasicFace(t *testing.T) {
	tbl := Calibrate(BasicProvider{}, FontSpec{}, "A♭")
	a, ok := tbl['A']
	if !ok || a.W <= 0 || a.H <= 0 || a.Y >= 0 {
		t.Fatalf("bounds for A = %+v %v", a, ok)
	}
	if a.W > 7 || a.H > 13 {
		t.Fatalf("bounds exceed the 7x13 cell: %+v", a)
	}
	if _, ok := tbl['♭']; ok {
		t.Fatalf("uncovered glyph must have no entry")
	}
}

type countingProvider struct{ n atomic.Int32 }

func (p *countingProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	p.n.Add(1)
	return BasicProvider{}.Resolve(spec)
}

func TestGlyphBoundsCache_FillsOncePerFont(t *testing.T) {
	p := &countingProvider{}
	c := NewGlyphBoundsCache(p, "")
	spec := FontSpec{Family: "Go", SizePt: 12}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Bounds(spec, 'C'); !ok {
				t.Errorf("no bounds for C")
			}
		}()
	}
	wg.Wait()
	if n := p.n.Load(); n != 1 {
		t.Fatalf("calibrated %d times, want 1", n)
	}
	c.Bounds(FontSpec{Family: "Go", SizePt: 14}, 'C')
	if n := p.n.Load(); n != 2 {
		t.Fatalf("second font not calibrated separately: %d", n)
	}
}

func TestGlyphBoundsCache_PersistsAndRecovers(t *testing.T) {
	dir := t.TempDir()
	spec := FontSpec{Family: "Go Mono", SizePt: 10.5, Weight: 700}
	c := NewGlyphBoundsCache(BasicProvider{}, dir)
	path := c.Path(spec)
	if filepath.Base(path) != "go-mono_10.5_bold.json" {
		t.Fatalf("cache file name = %q", filepath.Base(path))
	}
	want := c.Table(spec)
	got, err := ReadCacheFile(path, AlphabetVersion)
	if err != nil {
		t.Fatalf("ReadCacheFile: %v", err)
	}
	if len(got) != len(want) || got['A'] != want['A'] {
		t.Fatalf("persisted table differs: %v vs %v", got, want)
	}

	// A fresh cache reads the file instead of calibrating.
	p := &countingProvider{}
	if b, ok := NewGlyphBoundsCache(p, dir).Bounds(spec, 'A'); !ok || b != want['A'] {
		t.Fatalf("cached bounds = %+v %v", b, ok)
	}
	if p.n.Load() != 0 {
		t.Fatalf("cache file ignored")
	}

	if _, err := ReadCacheFile(path, "0:old"); !isCorruption(err) {
		t.Fatalf("alphabet mismatch: got %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"alphabet": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCacheFile(path, AlphabetVersion); !isCorruption(err) {
		t.Fatalf("schema violation: got %v", err)
	}
	if b, ok := NewGlyphBoundsCache(BasicProvider{}, dir).Bounds(spec, 'A'); !ok || b != want['A'] {
		t.Fatalf("recovered bounds = %+v %v", b, ok)
	}
	if _, err := ReadCacheFile(path, AlphabetVersion); err != nil {
		t.Fatalf("corrupt file not overwritten: %v", err)
	}
}

func isCorruption(err error) bool {
	var cerr *CacheCorruptionError
	return errors.As(err, &cerr)
}
