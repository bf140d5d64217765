/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"nashchart/internal/domain"
	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

type chordGlyphs struct {
	upper  []textlayout.Glyph
	upperW float32
	lower  []textlayout.Glyph
	lowerW float32
	slash  bool
	w      float32
}

// measureChord places the glyphs of c. Every slot is MeanChordWidth wide;
// a wider chord is centered on its slot and overhangs the padding.
func (r *run) measureChord(c domain.Chord) chordGlyphs {
	var g chordGlyphs
	g.upper, g.upperW = textlayout.Place(r.e.Metrics, r.st.Chord.Font, c.Head().Render(r.key))
	if c.Slash != nil {
		g.slash = true
		g.lower, g.lowerW = textlayout.Place(r.e.Metrics, r.st.ChordSmall.Font, c.Slash.Head().Render(r.key))
	}
	g.w = r.st.MeanChordWidth
	return g
}

// placeChords lays out one bar after another. A bar that does not fit on
// the line moves to a continuation line; bars are never split.
func (r *run) placeChords(cs domain.ChordSequence) {
	h := r.barHeight()
	for _, bar := range cs.Bars() {
		slots := make([]chordGlyphs, len(bar))
		w := r.st.ChordPadX
		for i, c := range bar {
			slots[i] = r.measureChord(c)
			w += slots[i].w + r.st.ChordPadX
		}
		r.wrap(w, h)
		r.drawBar(slots, vector.R(r.x, r.y, w, h))
		r.x += w
		r.rowH = max(r.rowH, h)
	}
	r.x += r.st.BarPadX
}

func (r *run) drawBar(slots []chordGlyphs, box vector.Rect) {
	r.add(Item{Kind: ItemRect, Role: RoleBarFrame, Rect: box})
	big := r.e.Metrics.Metrics(r.st.Chord.Font)
	small := r.e.Metrics.Metrics(r.st.ChordSmall.Font)
	cx := box.X + r.st.ChordPadX
	for _, g := range slots {
		if !g.slash {
			base := box.Y + (box.H+big.Ascent-big.Descent)/2
			r.glyphs(RoleChord, g.upper, cx+(g.w-g.upperW)/2, base, big)
		} else {
			lowBase := box.Y + box.H - r.st.BarPadY/2
			divY := lowBase - r.st.DashOffset
			r.glyphs(RoleChord, g.upper, cx+(g.w-g.upperW)/2, divY-r.st.DashHeight, big)
			r.add(Item{Kind: ItemRect, Role: RoleDivider, Rect: vector.R(cx, divY, g.w, r.st.DashHeight)})
			r.glyphs(RoleChordSmall, g.lower, cx+(g.w-g.lowerW)/2, lowBase, small)
		}
		cx += g.w + r.st.ChordPadX
	}
}

func (r *run) glyphs(role Role, gs []textlayout.Glyph, x, baseline float32, met textlayout.Metrics) {
	f := role.Paint(r.st).Font
	for _, g := range gs {
		w := r.e.Metrics.Advance(f, g.Text)
		r.add(Item{
			Kind:     ItemText,
			Role:     role,
			Text:     g.Text,
			Rect:     vector.R(x+g.X, baseline-met.Ascent, w, met.Height()),
			Baseline: baseline,
		})
	}
}

// placeText draws a text section. A title or subtitle alone on its row is
// centered on the page; everything else starts at the cursor. On rows with
// chords the text is centered vertically against the bar height.
func (r *run) placeText(t domain.Text) {
	role := textRole(t.Kind)
	f := role.Paint(r.st).Font
	met := r.e.Metrics.Metrics(f)
	lineH := met.Height()
	lines := textlayout.Wrap(r.e.Metrics, f, t.Text, r.area.W)
	var w float32
	widths := make([]float32, len(lines))
	for i, ln := range lines {
		widths[i] = r.e.Metrics.Advance(f, ln)
		w = max(w, widths[i])
	}
	h := lineH * float32(len(lines))

	var x float32
	if (t.Kind == domain.TextTitle || t.Kind == domain.TextSubtitle) && r.row.visible == 1 {
		x = r.area.X + (r.area.W-w)/2
	} else {
		r.wrap(w, h)
		x = r.x
	}
	top, boxH := r.y, h
	if r.row.hasChords {
		if bh := r.barHeight(); h < bh {
			top = r.y + (bh-h)/2
			boxH = bh
		}
	}
	for i, ln := range lines {
		if ln == "" {
			continue
		}
		y := top + float32(i)*lineH
		r.add(Item{Kind: ItemText, Role: role, Text: ln, Rect: vector.R(x, y, widths[i], lineH), Baseline: y + met.Ascent})
	}
	r.x = x + w + r.st.BarPadX
	r.rowH = max(r.rowH, boxH)
}
