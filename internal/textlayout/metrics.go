/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"

	"golang.org/x/image/font"

	"nashchart/internal/vector"
)

// GlyphPad is the horizontal padding placed on both sides of a glyph
// that is positioned by its calibrated ink bounds.
const GlyphPad = 1

// GlyphMetrics is what the layout engine needs to know about text. Bounds
// reports a calibrated ink rectangle relative to the pen origin on the
// baseline; ok is false when no calibration is known for r.
type GlyphMetrics interface {
	Advance(f FontSpec, s string) float32
	Bounds(f FontSpec, r rune) (rect vector.Rect, ok bool)
	Metrics(f FontSpec) Metrics
}

// FontMetrics implements GlyphMetrics on top of a Provider. Without a
// Cache every glyph uses its nominal advance.
type FontMetrics struct {
	Provider Provider
	Cache    *GlyphBoundsCache
}

func (m FontMetrics) provider() Provider {
	if m.Provider == nil {
		return BasicProvider{}
	}
	return m.Provider
}

func (m FontMetrics) Advance(f FontSpec, s string) float32 {
	face, _ := m.provider().Resolve(f)
	return toPx(font.MeasureString(face, s))
}

func (m FontMetrics) Bounds(f FontSpec, r rune) (vector.Rect, bool) {
	if m.Cache == nil {
		return vector.Rect{}, false
	}
	return m.Cache.Bounds(f, r)
}

func (m FontMetrics) Metrics(f FontSpec) Metrics {
	_, met := m.provider().Resolve(f)
	return met
}

// Glyph is a piece of a text run with its x offset from the run start.
type Glyph struct {
	Text string
	X    float32
}

// Place splits s into draw pieces. Runs of uncalibrated characters keep
// the font's advance; a calibrated character is drawn at
// cursor - rect.X + GlyphPad and advances the cursor by rect.W plus
// GlyphPad on both sides. The returned width is the final cursor.
func Place(m GlyphMetrics, f FontSpec, s string) ([]Glyph, float32) {
	var (
		out    []Glyph
		cursor float32
		runAt  float32
		run    []rune
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		text := string(run)
		out = append(out, Glyph{Text: text, X: runAt})
		cursor = runAt + m.Advance(f, text)
		run = run[:0]
	}
	for _, r := range s {
		b, ok := m.Bounds(f, r)
		if !ok {
			if len(run) == 0 {
				runAt = cursor
			}
			run = append(run, r)
			continue
		}
		flush()
		out = append(out, Glyph{Text: string(r), X: cursor - b.X + GlyphPad})
		cursor += GlyphPad + b.W + GlyphPad
	}
	flush()
	return out, cursor
}

// Wrap breaks s on spaces into lines no wider than maxWidth. A single word
// wider than maxWidth gets a line of its own. Explicit newlines are kept.
// A maxWidth of zero or less disables wrapping.
func Wrap(m GlyphMetrics, f FontSpec, s string, maxWidth float32) []string {
	space := m.Advance(f, " ")
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var cur []string
		var w float32
		for _, word := range strings.Fields(para) {
			ww := m.Advance(f, word)
			if len(cur) > 0 && maxWidth > 0 && w+space+ww > maxWidth {
				lines = append(lines, strings.Join(cur, " "))
				cur, w = cur[:0], 0
			}
			if len(cur) > 0 {
				w += space
			}
			cur = append(cur, word)
			w += ww
		}
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}
