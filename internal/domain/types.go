/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the document model produced by the notation parser and
// consumed by the layout engine. A Song is built once per input and is not
// mutated after parsing completes.

// SectionKind names a Section variant.
type SectionKind int

const (
	KindChordSequence SectionKind = iota
	KindText
	KindKey
	KindBeats
	KindLineBreak
	KindParagraphBreak
	KindTab
	KindTabClear
)

func (k SectionKind) String() string {
	switch k {
	case KindChordSequence:
		return "chords"
	case KindText:
		return "text"
	case KindKey:
		return "key"
	case KindBeats:
		return "beats"
	case KindLineBreak:
		return "linebreak"
	case KindParagraphBreak:
		return "paragraphbreak"
	case KindTab:
		return "tab"
	case KindTabClear:
		return "tabclear"
	default:
		return "unknown"
	}
}

// Section is one element of a Song. Order is significant: it defines both
// reading order and layout flow order.
type Section interface {
	SectionKind() SectionKind
}

// Song is an ordered sequence of sections.
type Song struct {
	Sections []Section `json:"sections"`
}

// ChordSequence is a run of chords sharing a beats-per-bar setting.
// BeatsPerBar 0 means bars have unconstrained length.
type ChordSequence struct {
	Chords      []Chord `json:"chords"`
	BeatsPerBar int     `json:"beatsPerBar"`
}

// TextKind selects the paint used for a Text section.
type TextKind int

const (
	TextBody TextKind = iota
	TextTitle
	TextSubtitle
	TextSmall
)

func (k TextKind) String() string {
	switch k {
	case TextTitle:
		return "title"
	case TextSubtitle:
		return "subtitle"
	case TextSmall:
		return "small"
	default:
		return "text"
	}
}

// Text is a block of annotation text.
type Text struct {
	Kind TextKind `json:"kind"`
	Text string   `json:"text"`
}

// Key switches the musical key used to render subsequent chords.
type Key struct {
	Name string `json:"name"`
}

// Beats records a beats-per-bar change.
type Beats struct {
	Count int `json:"count"`
}

type LineBreak struct{}

type ParagraphBreak struct{}

// Tab marks a tab stop used to align columns across rows.
type Tab struct{}

// TabClear forgets all recorded tab stops.
type TabClear struct{}

func (ChordSequence) SectionKind() SectionKind  { return KindChordSequence }
func (Text) SectionKind() SectionKind           { return KindText }
func (Key) SectionKind() SectionKind            { return KindKey }
func (Beats) SectionKind() SectionKind          { return KindBeats }
func (LineBreak) SectionKind() SectionKind      { return KindLineBreak }
func (ParagraphBreak) SectionKind() SectionKind { return KindParagraphBreak }
func (Tab) SectionKind() SectionKind            { return KindTab }
func (TabClear) SectionKind() SectionKind       { return KindTabClear }

// Visible reports whether a section occupies space on a row.
func Visible(s Section) bool {
	switch s.(type) {
	case ChordSequence, Text:
		return true
	default:
		return false
	}
}

// IsBreak reports whether s ends a row.
func IsBreak(s Section) bool {
	switch s.(type) {
	case LineBreak, ParagraphBreak:
		return true
	default:
		return false
	}
}
