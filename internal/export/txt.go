/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"nashchart/internal/domain"
)

// CellWidth is the column width of one chord in text output.
const CellWidth = 5

// WriteText prints song as plain text. Each chord takes a CellWidth cell
// and bars are delimited by '|'. Text sections are printed verbatim, line
// breaks end the row and paragraph breaks add a blank line. Tab stops line
// up columns across rows the same way the page layout does.
func WriteText(w io.Writer, song domain.Song, key *domain.MusicKey, keys *domain.KeyTable) error {
	bw := bufio.NewWriter(w)
	tw := textWriter{w: bw, key: key, tabs: map[int]int{}}
	for _, s := range song.Sections {
		switch s := s.(type) {
		case domain.ChordSequence:
			tw.chords(s)
		case domain.Text:
			if tw.col > 0 {
				tw.write(" ")
			}
			tw.write(s.Text)
		case domain.Key:
			k, err := keys.Lookup(s.Name)
			if err != nil {
				return err
			}
			tw.key = k
		case domain.Tab:
			if stop, ok := tw.tabs[tw.tabIdx]; ok {
				if stop > tw.col {
					tw.write(strings.Repeat(" ", stop-tw.col))
				}
			} else {
				tw.tabs[tw.tabIdx] = tw.col
			}
			tw.tabIdx++
		case domain.TabClear:
			tw.tabs = map[int]int{}
		case domain.LineBreak:
			tw.endRow("\n")
		case domain.ParagraphBreak:
			tw.endRow("\n\n")
		case domain.Beats:
		default:
			return fmt.Errorf("write text: unsupported section %T", s)
		}
	}
	if tw.col > 0 {
		tw.endRow("\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

type textWriter struct {
	w      *bufio.Writer
	key    *domain.MusicKey
	col    int
	tabs   map[int]int
	tabIdx int
}

func (t *textWriter) write(s string) {
	_, _ = t.w.WriteString(s)
	t.col += utf8.RuneCountInString(s)
}

func (t *textWriter) chords(s domain.ChordSequence) {
	for _, bar := range s.Bars() {
		t.write("|")
		for _, c := range bar {
			t.write(cell(c.Render(t.key)))
		}
	}
	t.write("|")
}

func (t *textWriter) endRow(sep string) {
	_, _ = t.w.WriteString(sep)
	t.col = 0
	t.tabIdx = 0
}

// cell pads s to CellWidth runes; longer chords keep one trailing space.
func cell(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= CellWidth {
		return s + " "
	}
	return s + strings.Repeat(" ", CellWidth-n)
}
