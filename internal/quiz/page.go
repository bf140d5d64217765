/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package quiz

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nashchart/internal/domain"
	"nashchart/internal/layout"
	applog "nashchart/internal/log"
)

// DefaultKeys are the keys each quiz set is spelled out in.
const DefaultKeys = "e-flat g f d b-flat"

// NumbersLabel heads the unkeyed row of each set.
const NumbersLabel = "Nashville Numbers"

// maxSets bounds Page when a set is too small to ever fill a page.
const maxSets = 64

// Options configures a quiz page.
type Options struct {
	ChordsPerRow int
	Keys         []string
}

func (o Options) chordsPerRow() int {
	if o.ChordsPerRow <= 0 {
		return 12
	}
	return o.ChordsPerRow
}

var titler = cases.Title(language.English)

// KeyLabel turns a key table name into a row label, e.g. "e-flat" into
// "E Flat".
func KeyLabel(name string) string {
	return titler.String(strings.ReplaceAll(name, "-", " "))
}

// Set returns the sections of one quiz set: a row of generated chords as
// numbers followed by the same chords in each key. Rows are labelled and the
// chords line up on a shared tab stop.
func Set(chords []domain.Chord, keys []string) []domain.Section {
	row := func(key, label string) []domain.Section {
		return []domain.Section{
			domain.Key{Name: key},
			domain.Text{Kind: domain.TextSmall, Text: label},
			domain.Tab{},
			domain.ChordSequence{Chords: append([]domain.Chord(nil), chords...)},
		}
	}
	out := row("", NumbersLabel)
	for _, k := range keys {
		out = append(out, domain.LineBreak{})
		out = append(out, row(k, KeyLabel(k))...)
	}
	return out
}

// Page fills one page with quiz sets. Sets are added until the next one
// would spill onto a second page; a set that alone exceeds a page is kept.
func Page(e *layout.Engine, g *Generator, opt Options) (domain.Song, *layout.Chart, error) {
	log := applog.WithOperation(applog.WithComponent("quiz"), "page")
	for _, k := range opt.Keys {
		if _, err := e.Keys.Lookup(k); err != nil {
			return domain.Song{}, nil, err
		}
	}
	var (
		song  domain.Song
		chart *layout.Chart
	)
	for i := 0; i < maxSets; i++ {
		next := domain.Song{Sections: append([]domain.Section(nil), song.Sections...)}
		if i > 0 {
			next.Sections = append(next.Sections, domain.ParagraphBreak{})
		}
		next.Sections = append(next.Sections, Set(g.Chords(opt.chordsPerRow()), opt.Keys)...)
		c, err := e.Layout(next)
		if err != nil {
			return domain.Song{}, nil, fmt.Errorf("layout quiz: %w", err)
		}
		if len(c.Pages) > 1 && i > 0 {
			break
		}
		song, chart = next, c
		if len(c.Pages) > 1 {
			break
		}
	}
	log.Debug("quiz page built", "sections", len(song.Sections), "seed", g.Seed())
	return song, chart, nil
}
