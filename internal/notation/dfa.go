/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notation

import (
	"fmt"
	"unicode/utf8"
)

// charClass partitions the input alphabet. Every rune that appears in a
// keyword or symbol gets a class of its own; the rest share the fixed ones.
type charClass int

const (
	clsOther charClass = iota
	clsSpace
	clsDigit
	clsLetter
	numFixedClasses
)

const (
	digits       = "0123456789"
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	spaces       = " \t\r"
	beatsPrefix  = "beats:"
)

// keywords are matched literally. Shared prefixes are merged into one path.
var keywords = []struct {
	text string
	kind Kind
}{
	{"title:", TokTitle},
	{"subtitle:", TokSubtitle},
	{"text:", TokText},
	{"small:", TokSmallText},
	{"key:", TokKey},
	{"tab", TokTab},
	{"tabclear", TokTabClear},
}

var symbols = []struct {
	ch   rune
	kind Kind
}{
	{'\n', TokNewline},
	{'/', TokSlash},
	{'\\', TokBackslash},
	{'(', TokParenOpen},
	{')', TokParenClose},
	{'.', TokPeriod},
}

// chordModifiers may follow the scale degree inside a chord token. The
// lexer is lenient here; ParseChord applies the chord grammar.
const chordModifiers = digits + asciiLetters + "#'+-"

// DFA is a deterministic automaton over character classes. next[s][c] is
// the successor of state s on class c, or -1.
type DFA struct {
	classes   [128]charClass
	nclass    int
	next      [][]int
	accept    []Kind
	accepting []bool
}

const dfaStart = 0

func (d *DFA) classOf(r rune) charClass {
	if r >= 0 && r < 128 {
		return d.classes[r]
	}
	return clsOther
}

// match returns the byte length and kind of the longest token at the start
// of s. n is 0 when nothing matches.
func (d *DFA) match(s string) (n int, kind Kind) {
	state := dfaStart
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		state = d.next[state][d.classOf(r)]
		if state < 0 {
			break
		}
		i += size
		if d.accepting[state] {
			n, kind = i, d.accept[state]
		}
	}
	return n, kind
}

type dfaBuilder struct {
	d *DFA
}

func newDFABuilder(dedicated string) *dfaBuilder {
	d := &DFA{nclass: int(numFixedClasses)}
	for _, r := range asciiLetters {
		d.classes[r] = clsLetter
	}
	for _, r := range digits {
		d.classes[r] = clsDigit
	}
	for _, r := range spaces {
		d.classes[r] = clsSpace
	}
	seen := map[rune]bool{}
	for _, r := range dedicated {
		if seen[r] || r >= 128 {
			continue
		}
		seen[r] = true
		d.classes[r] = charClass(d.nclass)
		d.nclass++
	}
	b := &dfaBuilder{d: d}
	b.state()
	return b
}

func (b *dfaBuilder) state() int {
	row := make([]int, b.d.nclass)
	for i := range row {
		row[i] = -1
	}
	b.d.next = append(b.d.next, row)
	b.d.accept = append(b.d.accept, TokEOF)
	b.d.accepting = append(b.d.accepting, false)
	return len(b.d.next) - 1
}

func (b *dfaBuilder) set(from, to int, c charClass) {
	if cur := b.d.next[from][c]; cur >= 0 && cur != to {
		panic(fmt.Sprintf("notation: conflicting transition from state %d on class %d", from, c))
	}
	b.d.next[from][c] = to
}

// edge adds transitions from -> to on every character of chars.
func (b *dfaBuilder) edge(from, to int, chars string) {
	for _, r := range chars {
		b.set(from, to, b.d.classOf(r))
	}
}

// edgeExcept adds transitions from -> to on every class not used by except.
func (b *dfaBuilder) edgeExcept(from, to int, except string) {
	skip := map[charClass]bool{}
	for _, r := range except {
		skip[b.d.classOf(r)] = true
	}
	for c := 0; c < b.d.nclass; c++ {
		if !skip[charClass(c)] {
			b.set(from, to, charClass(c))
		}
	}
}

// literal follows or creates a single-character path spelling text and
// returns its final state.
func (b *dfaBuilder) literal(from int, text string) int {
	cur := from
	for _, r := range text {
		c := b.d.classOf(r)
		if c < numFixedClasses {
			panic(fmt.Sprintf("notation: literal %q uses shared class for %q", text, r))
		}
		if nxt := b.d.next[cur][c]; nxt >= 0 {
			cur = nxt
			continue
		}
		nxt := b.state()
		b.set(cur, nxt, c)
		cur = nxt
	}
	return cur
}

func (b *dfaBuilder) acceptAs(s int, k Kind) {
	if b.d.accepting[s] && b.d.accept[s] != k {
		panic(fmt.Sprintf("notation: state %d accepts both %s and %s", s, b.d.accept[s], k))
	}
	b.d.accepting[s] = true
	b.d.accept[s] = k
}

// buildDFA assembles the token automaton from the keyword and symbol tables
// plus the class-based rules for whitespace, strings, chords and beats.
func buildDFA() *DFA {
	dedicated := "\"#'+-b" + beatsPrefix
	for _, kw := range keywords {
		dedicated += kw.text
	}
	for _, s := range symbols {
		dedicated += string(s.ch)
	}
	b := newDFABuilder(dedicated)

	ws := b.state()
	b.edge(dfaStart, ws, spaces)
	b.edge(ws, ws, spaces)
	b.acceptAs(ws, TokWhitespace)

	for _, s := range symbols {
		b.acceptAs(b.literal(dfaStart, string(s.ch)), s.kind)
	}
	for _, kw := range keywords {
		b.acceptAs(b.literal(dfaStart, kw.text), kw.kind)
	}

	colon := b.literal(dfaStart, beatsPrefix)
	count := b.state()
	b.edge(colon, count, digits)
	b.edge(count, count, digits)
	b.acceptAs(count, TokBeats)

	chord := b.state()
	flat := b.literal(dfaStart, "b")
	sharp := b.literal(dfaStart, "#")
	b.edge(dfaStart, chord, digits)
	b.edge(flat, chord, digits)
	b.edge(sharp, chord, digits)
	b.edge(chord, chord, chordModifiers)
	b.acceptAs(chord, TokChord)

	str := b.state()
	esc := b.state()
	end := b.state()
	b.edge(dfaStart, str, `"`)
	b.edge(str, esc, `\`)
	b.edge(str, end, `"`)
	b.edgeExcept(str, str, "\"\\\n")
	b.edgeExcept(esc, str, "\n")
	b.acceptAs(end, TokString)

	return b.d
}

var tokenDFA = buildDFA()
