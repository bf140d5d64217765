/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout places a parsed song on letter-size pages. Sections flow
// left to right on rows; breaks start new rows; rows that do not fit start
// a new page. The engine keeps no state between calls.
package layout

import (
	"fmt"
	"log/slog"
	"strings"

	"nashchart/internal/domain"
	applog "nashchart/internal/log"
	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

// Engine lays out songs with a fixed style, metrics and key table.
type Engine struct {
	Style   textlayout.Style
	Metrics textlayout.GlyphMetrics
	Keys    *domain.KeyTable
	// Key is the key active at the start of the song; "" is numeric.
	Key string
}

func New(style textlayout.Style, metrics textlayout.GlyphMetrics, keys *domain.KeyTable) *Engine {
	if metrics == nil {
		metrics = textlayout.FontMetrics{}
	}
	return &Engine{Style: style.Normalize(), Metrics: metrics, Keys: keys}
}

type run struct {
	e       *Engine
	st      textlayout.Style
	chart   *Chart
	area    vector.Rect
	x, y    float32
	rowH    float32
	rowTop  bool
	row     rowInfo
	tabIdx  int
	tabs    map[int]float32
	key     *domain.MusicKey
	section int
}

// rowInfo is what the engine learns by scanning ahead to the next break.
type rowInfo struct {
	hasChords bool
	visible   int
	height    float32
}

// Layout places every visible section of song. Lookup of an unknown key
// name fails with domain.UnknownKeyError.
func (e *Engine) Layout(song domain.Song) (*Chart, error) {
	l := applog.WithComponent("layout")
	r := &run{
		e:      e,
		st:     e.Style,
		chart:  &Chart{Style: e.Style, Pages: []Page{{}}},
		area:   e.Style.Content(),
		rowTop: true,
		tabs:   map[int]float32{},
	}
	r.x, r.y = r.area.X, r.area.Y
	if err := r.setKey(e.Key); err != nil {
		return nil, err
	}
	for i, s := range song.Sections {
		r.section = i
		if r.rowTop && !domain.IsBreak(s) {
			r.startRow(song.Sections[i:])
		}
		if err := r.place(s); err != nil {
			return nil, err
		}
	}
	l.Debug("layout done", slog.Int("sections", len(song.Sections)), slog.Int("pages", len(r.chart.Pages)))
	return r.chart, nil
}

func (r *run) setKey(name string) error {
	if strings.TrimSpace(name) == "" || strings.EqualFold(strings.TrimSpace(name), "none") {
		r.key = nil
		return nil
	}
	if r.e.Keys == nil {
		return &domain.UnknownKeyError{Name: name}
	}
	k, err := r.e.Keys.Lookup(name)
	if err != nil {
		return err
	}
	r.key = k
	return nil
}

func (r *run) barHeight() float32 { return r.st.ChordHeight + r.st.BarPadY }

func (r *run) page() *Page { return &r.chart.Pages[len(r.chart.Pages)-1] }

func (r *run) add(it Item) { r.page().Items = append(r.page().Items, it) }

// startRow scans ahead to the next break and starts a new page if the row
// does not fit below the current cursor.
func (r *run) startRow(rest []domain.Section) {
	info := rowInfo{}
	for _, s := range rest {
		if domain.IsBreak(s) {
			break
		}
		switch v := s.(type) {
		case domain.ChordSequence:
			info.hasChords = true
			info.visible++
			info.height = max(info.height, r.barHeight())
		case domain.Text:
			info.visible++
			info.height = max(info.height, r.e.Metrics.Metrics(r.textPaint(v.Kind).Font).Height())
		}
	}
	r.row = info
	r.rowTop = false
	r.ensureRoom(info.height)
}

func (r *run) ensureRoom(h float32) {
	if r.y+h <= r.area.Y+r.area.H || len(r.page().Items) == 0 {
		return
	}
	r.chart.Pages = append(r.chart.Pages, Page{})
	r.y = r.area.Y
}

// newLine moves the cursor to the left margin below the current row. Bar
// height already carries the vertical bar padding, so only paragraph
// breaks add a gap.
func (r *run) newLine(gap float32) {
	r.y += r.rowH + gap
	r.x = r.area.X
	r.rowH = 0
}

// wrap starts a continuation line when w does not fit on the current one.
func (r *run) wrap(w, h float32) {
	if r.x > r.area.X && r.x+w > r.area.X+r.area.W {
		r.newLine(0)
		r.ensureRoom(h)
	}
}

func (r *run) place(s domain.Section) error {
	switch v := s.(type) {
	case domain.ChordSequence:
		r.placeChords(v)
	case domain.Text:
		r.placeText(v)
	case domain.Key:
		return r.setKey(v.Name)
	case domain.Beats:
	case domain.Tab:
		if stop, ok := r.tabs[r.tabIdx]; ok {
			r.x = max(r.x, stop)
		} else {
			r.tabs[r.tabIdx] = r.x
		}
		r.tabIdx++
	case domain.TabClear:
		r.tabs = map[int]float32{}
	case domain.LineBreak:
		r.endRow(0)
	case domain.ParagraphBreak:
		r.endRow(r.st.SectionSpacing)
	default:
		return &UnsupportedSectionError{Index: r.section, Type: fmt.Sprintf("%T", s)}
	}
	return nil
}

func (r *run) endRow(gap float32) {
	r.newLine(gap)
	r.tabIdx = 0
	r.rowTop = true
}

func (r *run) textPaint(k domain.TextKind) textlayout.Paint {
	return textRole(k).Paint(r.st)
}

func textRole(k domain.TextKind) Role {
	switch k {
	case domain.TextTitle:
		return RoleTitle
	case domain.TextSubtitle:
		return RoleSubtitle
	case domain.TextSmall:
		return RoleSmall
	default:
		return RoleText
	}
}
