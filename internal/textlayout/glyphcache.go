/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	applog "nashchart/internal/log"
	"nashchart/internal/vector"
)

// GlyphAlphabet is the set of characters whose ink bounds are calibrated:
// note letters, accidentals, quality marks and extension superscripts.
const GlyphAlphabet = "ABCDEFG♭♯⁻⁺ᵒ²⁴⁵⁶⁷⁹"

// AlphabetVersion tags cache files. Files with another tag are discarded.
const AlphabetVersion = "1:" + GlyphAlphabet

//go:embed glyphcache.schema.json
var glyphCacheSchema []byte

// CacheCorruptionError reports an unreadable or mismatched cache file. It is
// always recovered by recomputing the entry.
type CacheCorruptionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CacheCorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("glyph cache %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("glyph cache %s: %s", e.Path, e.Reason)
}

func (e *CacheCorruptionError) Unwrap() error { return e.Err }

// GlyphBoundsCache holds calibrated glyph bounds per font. Each font is
// calibrated at most once per process; with a directory the tables are
// also persisted, one JSON file per font.
type GlyphBoundsCache struct {
	mu       sync.Mutex
	provider Provider
	dir      string
	alphabet string
	version  string
	fonts    map[string]map[rune]vector.Rect
	log      *slog.Logger
}

// NewGlyphBoundsCache returns a cache that renders with p. An empty dir
// keeps the cache in memory only.
func NewGlyphBoundsCache(p Provider, dir string) *GlyphBoundsCache {
	if p == nil {
		p = BasicProvider{}
	}
	return &GlyphBoundsCache{
		provider: p,
		dir:      dir,
		alphabet: GlyphAlphabet,
		version:  AlphabetVersion,
		fonts:    map[string]map[rune]vector.Rect{},
		log:      applog.WithComponent("glyphcache"),
	}
}

func (c *GlyphBoundsCache) Dir() string { return c.dir }

// Path returns the cache file for f, or "" for a memory-only cache.
func (c *GlyphBoundsCache) Path(f FontSpec) string {
	if c.dir == "" {
		return ""
	}
	return filepath.Join(c.dir, CacheKey(f)+".json")
}

// Bounds returns the calibrated ink rect of r in font f.
func (c *GlyphBoundsCache) Bounds(f FontSpec, r rune) (vector.Rect, bool) {
	b, ok := c.Table(f)[r]
	return b, ok
}

// Table returns the full bounds table for f, loading or calibrating it on
// first use. The returned map must not be modified.
func (c *GlyphBoundsCache) Table(f FontSpec) map[rune]vector.Rect {
	key := CacheKey(f)
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.fonts[key]; ok {
		return t
	}
	t := c.fill(f)
	c.fonts[key] = t
	return t
}

func (c *GlyphBoundsCache) fill(f FontSpec) map[rune]vector.Rect {
	path := c.Path(f)
	if path != "" {
		t, err := ReadCacheFile(path, c.version)
		if err == nil {
			c.log.Debug("glyph cache hit", slog.String("path", path))
			return t
		}
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("glyph cache discarded", slog.String("path", path), slog.Any("err", err))
		}
	}
	t := Calibrate(c.provider, f, c.alphabet)
	c.log.Debug("glyph bounds calibrated", slog.String("font", CacheKey(f)), slog.Int("glyphs", len(t)))
	if path != "" {
		if err := WriteCacheFile(path, c.version, t); err != nil {
			c.log.Warn("glyph cache not written", slog.String("path", path), slog.Any("err", err))
		}
	}
	return t
}

// CacheKey names a font as family_size_style with the family sanitized to
// lowercase letters, digits and dashes.
func CacheKey(f FontSpec) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(f.Family) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('-')
		}
	}
	family := sb.String()
	if family == "" {
		family = "default"
	}
	style := "regular"
	switch {
	case f.Bold() && f.Italic:
		style = "bolditalic"
	case f.Bold():
		style = "bold"
	case f.Italic:
		style = "italic"
	}
	return family + "_" + strconv.FormatFloat(float64(f.SizePt), 'f', -1, 32) + "_" + style
}

// Calibrate renders each character of alphabet alone on an off-screen
// canvas and records the tightest rectangle of inked pixels relative to
// the pen origin. Characters the face does not cover, or that leave no
// ink, get no entry and keep their nominal advance.
func Calibrate(p Provider, f FontSpec, alphabet string) map[rune]vector.Rect {
	face, met := p.Resolve(f)
	size := int(math.Ceil(float64(met.Ascent+met.Descent))) + 2
	ox, oy := size, 2*size
	out := make(map[rune]vector.Rect)
	for _, r := range alphabet {
		if _, ok := face.GlyphAdvance(r); !ok {
			continue
		}
		img := image.NewAlpha(image.Rect(0, 0, 4*size, 3*size))
		d := font.Drawer{Dst: img, Src: image.Opaque, Face: face, Dot: fixed.P(ox, oy)}
		d.DrawString(string(r))
		if b, ok := inkBounds(img); ok {
			out[r] = vector.R(float32(b.Min.X-ox), float32(b.Min.Y-oy), float32(b.Dx()), float32(b.Dy()))
		}
	}
	return out
}

func inkBounds(img *image.Alpha) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, -1, -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.AlphaAt(x, y).A == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

type cacheFile struct {
	Alphabet string                `json:"alphabet"`
	Entries  map[string][4]float32 `json:"entries"`
}

// ReadCacheFile loads a cache file written for version. A missing file
// returns an fs.ErrNotExist error; anything unreadable, invalid or tagged
// with another version is a *CacheCorruptionError.
func ReadCacheFile(path, version string) (map[rune]vector.Rect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, &CacheCorruptionError{Path: path, Reason: "unreadable", Err: err}
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(glyphCacheSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &CacheCorruptionError{Path: path, Reason: "not JSON", Err: err}
	}
	if !res.Valid() {
		return nil, &CacheCorruptionError{Path: path, Reason: fmt.Sprintf("schema: %v", res.Errors())}
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, &CacheCorruptionError{Path: path, Reason: "decode", Err: err}
	}
	if cf.Alphabet != version {
		return nil, &CacheCorruptionError{Path: path, Reason: "alphabet mismatch"}
	}
	out := make(map[rune]vector.Rect, len(cf.Entries))
	for k, v := range cf.Entries {
		r, size := utf8.DecodeRuneInString(k)
		if size == 0 || size != len(k) {
			return nil, &CacheCorruptionError{Path: path, Reason: fmt.Sprintf("bad entry key %q", k)}
		}
		out[r] = vector.R(v[0], v[1], v[2], v[3])
	}
	return out, nil
}

// WriteCacheFile replaces path atomically with the given table.
func WriteCacheFile(path, version string, t map[rune]vector.Rect) error {
	cf := cacheFile{Alphabet: version, Entries: make(map[string][4]float32, len(t))}
	for r, b := range t {
		cf.Entries[string(r)] = [4]float32{b.X, b.Y, b.W, b.H}
	}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".glyphs-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
