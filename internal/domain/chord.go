/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"strconv"
	"strings"
)

type Accidental int

const (
	AccidentalNone Accidental = iota
	AccidentalFlat
	AccidentalSharp
)

// ChordType is the chord quality. TypeBeat marks a filler slot that pads a bar.
type ChordType int

const (
	TypeNone ChordType = iota
	TypeMinor
	TypeDiminished
	TypeAugmented
	TypeBeat
)

// OptType is the optional extension drawn as a superscript.
type OptType int

const (
	OptNone OptType = iota
	OptTwo
	OptFour
	OptFive
	OptSix
	OptSeven
	OptNine
)

// Chord is a Nashville-number chord. Number is always 1..7.
// BeatNumber <= 0 marks the start of a new bar while grouping.
type Chord struct {
	Number     int        `json:"number"`
	Accidental Accidental `json:"accidental,omitempty"`
	Type       ChordType  `json:"type,omitempty"`
	Opt        OptType    `json:"opt,omitempty"`
	Slash      *Chord     `json:"slash,omitempty"`
	BeatNumber int        `json:"beatNumber,omitempty"`
}

// NewChord returns a plain chord for scale degree n.
func NewChord(n int) Chord { return Chord{Number: n} }

// SlashChord returns degree n over bass degree bass.
func SlashChord(n, bass int) Chord {
	b := NewChord(bass)
	return Chord{Number: n, Slash: &b}
}

// Filler returns a beat placeholder used to pad incomplete bars.
func Filler() Chord { return Chord{Number: 1, Type: TypeBeat} }

// IsFiller reports whether c is a beat placeholder.
func (c Chord) IsFiller() bool { return c.Type == TypeBeat }

// Head returns c without its slash chord.
func (c Chord) Head() Chord {
	c.Slash = nil
	return c
}

// Equal compares two chords including their slash chords.
func (c Chord) Equal(o Chord) bool {
	if c.Number != o.Number || c.Accidental != o.Accidental || c.Type != o.Type || c.Opt != o.Opt || c.BeatNumber != o.BeatNumber {
		return false
	}
	if (c.Slash == nil) != (o.Slash == nil) {
		return false
	}
	return c.Slash == nil || c.Slash.Equal(*o.Slash)
}

// Display glyphs. Reference: https://en.wikipedia.org/wiki/Unicode_subscripts_and_superscripts
const (
	GlyphFlat       = '♭'
	GlyphSharp      = '♯'
	GlyphMinor      = '⁻'
	GlyphAugmented  = '⁺'
	GlyphDiminished = 'ᵒ'
	GlyphFiller     = '.'
)

var optGlyphs = map[OptType]rune{
	OptTwo:   '²',
	OptFour:  '⁴',
	OptFive:  '⁵',
	OptSix:   '⁶',
	OptSeven: '⁷',
	OptNine:  '⁹',
}

var optDigits = map[OptType]byte{
	OptTwo:   '2',
	OptFour:  '4',
	OptFive:  '5',
	OptSix:   '6',
	OptSeven: '7',
	OptNine:  '9',
}

// OptGlyph returns the superscript glyph for an extension.
func OptGlyph(o OptType) (rune, bool) {
	r, ok := optGlyphs[o]
	return r, ok
}

// Semitone offsets of each degree for natural, flat and sharp accidentals.
var (
	naturalIndex = [7]int{0, 2, 4, 5, 7, 9, 11}
	flatIndex    = [7]int{11, 1, 3, 4, 6, 8, 10}
	sharpIndex   = [7]int{1, 3, 4, 6, 8, 10, 0}
)

// SemitoneIndex returns the 0..11 offset of the chord root from the tonic.
func (c Chord) SemitoneIndex() int {
	n := c.Number - 1
	if n < 0 || n > 6 {
		return 0
	}
	switch c.Accidental {
	case AccidentalFlat:
		return flatIndex[n]
	case AccidentalSharp:
		return sharpIndex[n]
	default:
		return naturalIndex[n]
	}
}

// Render returns the display string of the chord. With a nil key the degree
// is shown as a digit; otherwise it is replaced by the key's letter name.
// A slash chord is appended after '/'.
func (c Chord) Render(key *MusicKey) string {
	var sb strings.Builder
	c.render(&sb, key)
	return sb.String()
}

func (c Chord) render(sb *strings.Builder, key *MusicKey) {
	if c.IsFiller() {
		sb.WriteRune(GlyphFiller)
		return
	}
	if key != nil {
		sb.WriteString(key.Keys[c.SemitoneIndex()])
	} else {
		switch c.Accidental {
		case AccidentalFlat:
			sb.WriteRune(GlyphFlat)
		case AccidentalSharp:
			sb.WriteRune(GlyphSharp)
		}
		sb.WriteString(strconv.Itoa(c.Number))
	}
	switch c.Type {
	case TypeMinor:
		sb.WriteRune(GlyphMinor)
	case TypeAugmented:
		sb.WriteRune(GlyphAugmented)
	case TypeDiminished:
		sb.WriteRune(GlyphDiminished)
	}
	if r, ok := optGlyphs[c.Opt]; ok {
		sb.WriteRune(r)
	}
	if c.Slash != nil {
		sb.WriteByte('/')
		c.Slash.Head().render(sb, key)
	}
}

// String returns the chord in source notation, e.g. "b3-7/5".
func (c Chord) String() string {
	if c.IsFiller() {
		return "."
	}
	var sb strings.Builder
	switch c.Accidental {
	case AccidentalFlat:
		sb.WriteByte('b')
	case AccidentalSharp:
		sb.WriteByte('#')
	}
	sb.WriteString(strconv.Itoa(c.Number))
	switch c.Type {
	case TypeMinor:
		sb.WriteByte('-')
	case TypeDiminished:
		sb.WriteByte('\'')
	case TypeAugmented:
		sb.WriteByte('+')
	}
	if d, ok := optDigits[c.Opt]; ok {
		sb.WriteByte(d)
	}
	if c.Slash != nil {
		sb.WriteByte('/')
		sb.WriteString(c.Slash.Head().String())
	}
	return sb.String()
}

// OptFromRune maps a digit or superscript back to its extension.
func OptFromRune(r rune) (OptType, bool) {
	for o, g := range optGlyphs {
		if g == r || rune(optDigits[o]) == r {
			return o, true
		}
	}
	return OptNone, false
}
