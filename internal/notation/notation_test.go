/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notation

import (
	"errors"
	"testing"

	"nashchart/internal/domain"
)

func kinds(secs []domain.Section) []domain.SectionKind {
	out := make([]domain.SectionKind, len(secs))
	for i, s := range secs {
		out[i] = s.SectionKind()
	}
	return out
}

func sameKinds(a, b []domain.SectionKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustParse(t *testing.T, src string) domain.Song {
	t.Helper()
	s, err := Parse("test.nash", src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return s
}

func TestTokens_AllKinds(t *testing.T) {
	src := "title: \"Hi\" b3-7/5 (1 .) beats:4 tab tabclear key: \"g\" \\\nsubtitle: small: text:"
	toks, err := Tokens("", src)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	want := []Kind{
		TokTitle, TokString, TokChord, TokSlash, TokChord, TokParenOpen, TokChord, TokPeriod, TokParenClose,
		TokBeats, TokTab, TokTabClear, TokKey, TokString, TokBackslash, TokNewline,
		TokSubtitle, TokSmallText, TokText,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s (%q), want %s", i, toks[i].Kind, toks[i].Text, k)
		}
	}
	if toks[2].Text != "b3-7" {
		t.Errorf("chord text = %q", toks[2].Text)
	}
	if toks[9].Text != "beats:4" {
		t.Errorf("beats text = %q", toks[9].Text)
	}
}

func TestTokens_LongestMatch(t *testing.T) {
	toks, err := Tokens("", "tabclear tab b5 beats:12")
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	want := []Kind{TokTabClear, TokTab, TokChord, TokBeats}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestTokens_Positions(t *testing.T) {
	toks, err := Tokens("f", "1 2\n  \"x\"")
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	last := toks[len(toks)-1]
	if last.Pos.Line != 2 || last.Pos.Column != 3 || last.Pos.Offset != 6 {
		t.Fatalf("string at %+v, want 2:3 offset 6", last.Pos)
	}
	if last.Pos.String() != "f:2:3" {
		t.Fatalf("Position.String() = %q", last.Pos.String())
	}
}

func TestLexer_PeekReadIfReset(t *testing.T) {
	l := NewLexer("", "1 / 5")
	p1, _ := l.Peek()
	p2, _ := l.Peek()
	if p1 != p2 || p1.Kind != TokChord {
		t.Fatalf("Peek not stable: %+v %+v", p1, p2)
	}
	if _, ok, _ := l.ReadIf(TokSlash); ok {
		t.Fatalf("ReadIf consumed a non-matching token")
	}
	if tok, _ := l.Next(); tok.Text != "1" {
		t.Fatalf("Next = %+v", tok)
	}
	if _, ok, _ := l.ReadIf(TokSlash); !ok {
		t.Fatalf("ReadIf did not consume '/'")
	}
	l.Reset()
	if tok, _ := l.Next(); tok.Text != "1" || tok.Pos.Column != 1 {
		t.Fatalf("after Reset: %+v", tok)
	}
}

func TestLexError(t *testing.T) {
	_, err := Parse("", "1\n  @")
	var lerr *LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("want LexError, got %v", err)
	}
	if lerr.Pos.Line != 2 || lerr.Pos.Column != 3 {
		t.Fatalf("error at %s, want 2:3", lerr.Pos)
	}
	_, err = Parse("", `"open`)
	if !errors.As(err, &lerr) || lerr.Message != "unterminated string" {
		t.Fatalf("want unterminated string, got %v", err)
	}
}

func TestParse_SimpleRow(t *testing.T) {
	s := mustParse(t, "1 4 5 6\n")
	if len(s.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(s.Sections))
	}
	cs, ok := s.Sections[0].(domain.ChordSequence)
	if !ok {
		t.Fatalf("section is %T", s.Sections[0])
	}
	want := []int{1, 4, 5, 6}
	for i, n := range want {
		if cs.Chords[i].Number != n || cs.Chords[i].BeatNumber != 0 {
			t.Errorf("chord %d = %+v", i, cs.Chords[i])
		}
	}
}

func TestParse_Group(t *testing.T) {
	s := mustParse(t, "(1 2' 3)")
	cs := s.Sections[0].(domain.ChordSequence)
	if len(cs.Chords) != 3 {
		t.Fatalf("got %d chords", len(cs.Chords))
	}
	for i, c := range cs.Chords {
		if c.BeatNumber != i {
			t.Errorf("chord %d beat = %d", i, c.BeatNumber)
		}
	}
	if cs.Chords[1].Type != domain.TypeDiminished {
		t.Errorf("second chord type = %v", cs.Chords[1].Type)
	}
	if bars := cs.Bars(); len(bars) != 1 {
		t.Errorf("group spans %d bars", len(bars))
	}
}

func TestParseChord(t *testing.T) {
	c, err := ParseChord("b3-7")
	if err != nil {
		t.Fatalf("ParseChord: %v", err)
	}
	if c.Accidental != domain.AccidentalFlat || c.Number != 3 || c.Type != domain.TypeMinor || c.Opt != domain.OptSeven {
		t.Fatalf("got %+v", c)
	}
	for _, bad := range []struct {
		text string
		ch   rune
	}{{"8", '8'}, {"1x", 'x'}, {"#0", '0'}, {"b", 0}} {
		_, err := ParseChord(bad.text)
		var cerr *ChordSyntaxError
		if !errors.As(err, &cerr) {
			t.Errorf("%q: want ChordSyntaxError, got %v", bad.text, err)
			continue
		}
		if cerr.Char != bad.ch {
			t.Errorf("%q: offending char %q, want %q", bad.text, cerr.Char, bad.ch)
		}
	}
}

func TestParse_ChordSyntaxErrorHasPosition(t *testing.T) {
	_, err := Parse("", "1 2\n5 9x")
	var cerr *ChordSyntaxError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ChordSyntaxError, got %v", err)
	}
	if cerr.Pos.Line != 2 || cerr.Pos.Column != 3 || cerr.Char != '9' {
		t.Fatalf("got %+v", cerr)
	}
}

func TestParse_TrailingAccidentalIsChordError(t *testing.T) {
	for _, tc := range []struct {
		src string
		ch  rune
	}{{"1 3#", '#'}, {"1 3b", 'b'}, {"1 4#-7", '#'}} {
		_, err := Parse("", tc.src)
		var cerr *ChordSyntaxError
		if !errors.As(err, &cerr) {
			t.Errorf("%q: want ChordSyntaxError, got %v", tc.src, err)
			continue
		}
		if cerr.Char != tc.ch || cerr.Pos.Line != 1 || cerr.Pos.Column != 3 {
			t.Errorf("%q: got %+v", tc.src, cerr)
		}
	}
}

func TestParse_SlashChords(t *testing.T) {
	s := mustParse(t, "4/5 1-/b7")
	cs := s.Sections[0].(domain.ChordSequence)
	if cs.Chords[0].Slash == nil || cs.Chords[0].Slash.Number != 5 {
		t.Fatalf("first chord = %+v", cs.Chords[0])
	}
	if b := cs.Chords[1].Slash; b == nil || b.Accidental != domain.AccidentalFlat || b.Number != 7 {
		t.Fatalf("second chord bass = %+v", b)
	}
	for _, src := range []string{"./5", "5/.", "5/"} {
		var perr *ParseError
		if _, err := Parse("", src); !errors.As(err, &perr) {
			t.Errorf("%q: want ParseError, got %v", src, err)
		}
	}
}

func TestParse_Fillers(t *testing.T) {
	s := mustParse(t, "beats:4 1 . (5 .)")
	cs := s.Sections[1].(domain.ChordSequence)
	if cs.BeatsPerBar != 4 {
		t.Fatalf("beats per bar = %d", cs.BeatsPerBar)
	}
	if !cs.Chords[1].IsFiller() || cs.Chords[1].BeatNumber != 0 {
		t.Errorf("scalar filler = %+v", cs.Chords[1])
	}
	if !cs.Chords[3].IsFiller() || cs.Chords[3].BeatNumber != 1 {
		t.Errorf("grouped filler = %+v", cs.Chords[3])
	}
	if bars := cs.Bars(); len(bars) != 3 {
		t.Errorf("got %d bars, want 3", len(bars))
	}
}

func TestParse_MissingParen(t *testing.T) {
	var perr *ParseError
	if _, err := Parse("", "(1 2"); !errors.As(err, &perr) {
		t.Fatalf("want ParseError, got %v", err)
	}
	if _, err := Parse("", "()"); !errors.As(err, &perr) {
		t.Fatalf("want ParseError for empty group, got %v", err)
	}
	if _, err := Parse("", "1 )"); !errors.As(err, &perr) {
		t.Fatalf("want ParseError for stray paren, got %v", err)
	}
}

func TestParse_Breaks(t *testing.T) {
	cases := []struct {
		src  string
		want []domain.SectionKind
	}{
		{"1 2\n3 4", []domain.SectionKind{domain.KindChordSequence, domain.KindLineBreak, domain.KindChordSequence}},
		{"1\n\n\n2", []domain.SectionKind{domain.KindChordSequence, domain.KindParagraphBreak, domain.KindChordSequence}},
		{"1 2 \\\n 3", []domain.SectionKind{domain.KindChordSequence}},
		{"\n\n1\n\n", []domain.SectionKind{domain.KindChordSequence}},
		{"tab\n1", []domain.SectionKind{domain.KindTab, domain.KindChordSequence}},
		{"\"A\"\ntab 1", []domain.SectionKind{domain.KindText, domain.KindLineBreak, domain.KindTab, domain.KindChordSequence}},
		{"1 \"x\" 2", []domain.SectionKind{domain.KindChordSequence, domain.KindText, domain.KindChordSequence}},
	}
	for _, tc := range cases {
		s := mustParse(t, tc.src)
		if got := kinds(s.Sections); !sameKinds(got, tc.want) {
			t.Errorf("%q: got %v, want %v", tc.src, got, tc.want)
		}
	}
	s := mustParse(t, "1 2 \\\n 3")
	if n := len(s.Sections[0].(domain.ChordSequence).Chords); n != 3 {
		t.Errorf("joined sequence has %d chords", n)
	}
}

func TestParse_TextAndKeys(t *testing.T) {
	s := mustParse(t, `title: "Song" subtitle: "by me" small: "s" text: "t" "a \"b\"" key: " G "`)
	want := []struct {
		kind domain.TextKind
		text string
	}{
		{domain.TextTitle, "Song"},
		{domain.TextSubtitle, "by me"},
		{domain.TextSmall, "s"},
		{domain.TextBody, "t"},
		{domain.TextBody, `a "b"`},
	}
	for i, w := range want {
		tx, ok := s.Sections[i].(domain.Text)
		if !ok || tx.Kind != w.kind || tx.Text != w.text {
			t.Errorf("section %d = %#v, want %v %q", i, s.Sections[i], w.kind, w.text)
		}
	}
	if k, ok := s.Sections[5].(domain.Key); !ok || k.Name != "G" {
		t.Errorf("key section = %#v", s.Sections[5])
	}
	var perr *ParseError
	if _, err := Parse("", "title: 1"); !errors.As(err, &perr) {
		t.Errorf("marker without string: got %v", err)
	}
}

func TestRoundTrip_SourceNotation(t *testing.T) {
	sources := []string{"1", "b3-7", "#4'", "5+9", "2-7/5", "b7/1", "6-2", "4/b3"}
	for _, src := range sources {
		a := mustParse(t, src).Sections[0].(domain.ChordSequence).Chords[0]
		b := mustParse(t, a.String()).Sections[0].(domain.ChordSequence).Chords[0]
		if !a.Equal(b) {
			t.Errorf("%q: %v != %v", src, a, b)
		}
	}
}

func TestRoundTrip_RenderedNumeric(t *testing.T) {
	for _, src := range []string{"1", "b3-7", "#4'", "5+9", "6-2", "b2⁶"} {
		a, err := ParseChord(src)
		if err != nil {
			t.Fatalf("ParseChord(%q): %v", src, err)
		}
		b, err := ParseChord(a.Render(nil))
		if err != nil {
			t.Fatalf("ParseChord(%q): %v", a.Render(nil), err)
		}
		if !a.Equal(b) {
			t.Errorf("%q: rendered %q parsed to %v", src, a.Render(nil), b)
		}
	}
}
