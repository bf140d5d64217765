/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notation

import "nashchart/internal/domain"

// ParseChord parses a single chord head such as "b3-7". The source
// spelling (b # - ' + digits) and the display glyphs produced by
// domain.Chord.Render are both accepted, so rendered numeric chords parse
// back to the same value.
func ParseChord(text string) (domain.Chord, error) {
	var c domain.Chord
	rs := []rune(text)
	fail := func(ch rune, msg string) (domain.Chord, error) {
		return domain.Chord{}, &ChordSyntaxError{Token: text, Char: ch, Msg: msg}
	}
	i := 0
	if i < len(rs) {
		switch rs[i] {
		case 'b', domain.GlyphFlat:
			c.Accidental = domain.AccidentalFlat
			i++
		case '#', domain.GlyphSharp:
			c.Accidental = domain.AccidentalSharp
			i++
		}
	}
	if i >= len(rs) {
		return fail(0, "missing scale degree")
	}
	if rs[i] < '1' || rs[i] > '7' {
		return fail(rs[i], "scale degree must be 1-7, found")
	}
	c.Number = int(rs[i] - '0')
	for _, r := range rs[i+1:] {
		switch r {
		case '-', domain.GlyphMinor:
			c.Type = domain.TypeMinor
		case '\'', domain.GlyphDiminished:
			c.Type = domain.TypeDiminished
		case '+', domain.GlyphAugmented:
			c.Type = domain.TypeAugmented
		default:
			o, ok := domain.OptFromRune(r)
			if !ok {
				return fail(r, "unexpected character")
			}
			c.Opt = o
		}
	}
	return c, nil
}
