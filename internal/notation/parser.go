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
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"nashchart/internal/domain"
)

// Parser builds a song from a token stream. Breaks are held back until the
// next real content token so that trailing newlines and breaks on empty
// rows never reach the song.
type Parser struct {
	lex           *Lexer
	sections      []domain.Section
	seq           *domain.ChordSequence
	beatsPerBar   int
	pending       int
	rowHasContent bool
}

// Parse normalizes src to NFC and parses it. name is used in error
// positions.
func Parse(name, src string) (domain.Song, error) {
	return NewParser(NewLexer(name, norm.NFC.String(src))).Parse()
}

func NewParser(l *Lexer) *Parser {
	return &Parser{lex: l}
}

// Parse consumes the whole token stream. The first error aborts parsing.
func (p *Parser) Parse() (domain.Song, error) {
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return domain.Song{}, err
		}
		switch tok.Kind {
		case TokEOF:
			p.closeSequence()
			return domain.Song{Sections: p.sections}, nil
		case TokNewline, TokBackslash:
			if err := p.breaks(); err != nil {
				return domain.Song{}, err
			}
			continue
		}
		p.flushBreak()
		if err := p.content(tok); err != nil {
			return domain.Song{}, err
		}
	}
}

// breaks consumes a run of newlines and backslashes. A backslash anywhere
// in the run joins the rows; otherwise one newline is a line break and two
// or more are a paragraph break.
func (p *Parser) breaks() error {
	newlines, joined := 0, false
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokNewline:
			newlines++
		case TokBackslash:
			joined = true
		default:
			if !joined {
				p.closeSequence()
				p.pending = max(p.pending, min(newlines, 2))
			}
			return nil
		}
		_, _ = p.lex.Next()
	}
}

func (p *Parser) flushBreak() {
	if p.pending == 0 {
		return
	}
	if p.rowHasContent {
		if p.pending >= 2 {
			p.emit(domain.ParagraphBreak{})
		} else {
			p.emit(domain.LineBreak{})
		}
		p.rowHasContent = false
	}
	p.pending = 0
}

func (p *Parser) emit(s domain.Section) {
	if domain.Visible(s) {
		p.rowHasContent = true
	}
	p.sections = append(p.sections, s)
}

func (p *Parser) closeSequence() {
	if p.seq == nil {
		return
	}
	p.emit(*p.seq)
	p.seq = nil
}

func (p *Parser) addChord(c domain.Chord) {
	if p.seq == nil {
		p.seq = &domain.ChordSequence{BeatsPerBar: p.beatsPerBar}
	}
	p.seq.Chords = append(p.seq.Chords, c)
}

var textMarkers = map[Kind]domain.TextKind{
	TokTitle:     domain.TextTitle,
	TokSubtitle:  domain.TextSubtitle,
	TokText:      domain.TextBody,
	TokSmallText: domain.TextSmall,
}

func (p *Parser) content(tok Token) error {
	switch tok.Kind {
	case TokString:
		_, _ = p.lex.Next()
		p.closeSequence()
		p.emit(domain.Text{Kind: domain.TextBody, Text: unquote(tok.Text)})
	case TokTitle, TokSubtitle, TokText, TokSmallText:
		_, _ = p.lex.Next()
		s, err := p.expectString(tok)
		if err != nil {
			return err
		}
		p.closeSequence()
		p.emit(domain.Text{Kind: textMarkers[tok.Kind], Text: s})
	case TokKey:
		_, _ = p.lex.Next()
		s, err := p.expectString(tok)
		if err != nil {
			return err
		}
		p.closeSequence()
		p.emit(domain.Key{Name: strings.TrimSpace(s)})
	case TokBeats:
		_, _ = p.lex.Next()
		n, err := strconv.Atoi(strings.TrimPrefix(tok.Text, beatsPrefix))
		if err != nil {
			return &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("bad beat count %q", tok.Text)}
		}
		p.closeSequence()
		p.emit(domain.Beats{Count: n})
		p.beatsPerBar = n
	case TokTab:
		_, _ = p.lex.Next()
		p.closeSequence()
		p.emit(domain.Tab{})
	case TokTabClear:
		_, _ = p.lex.Next()
		p.closeSequence()
		p.emit(domain.TabClear{})
	case TokParenOpen:
		_, _ = p.lex.Next()
		return p.group(tok)
	case TokChord, TokPeriod:
		c, err := p.chord(0)
		if err != nil {
			return err
		}
		p.addChord(c)
	default:
		_, _ = p.lex.Next()
		return &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("unexpected %s", tok.Kind)}
	}
	return nil
}

func (p *Parser) expectString(marker Token) (string, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind != TokString {
		return "", &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("expected string after %s, found %s", marker.Kind, tok.Kind)}
	}
	return unquote(tok.Text), nil
}

// group parses a parenthesized bar. Members get beat numbers 0, 1, 2...
// Line breaks inside a group are ignored.
func (p *Parser) group(open Token) error {
	beat := 0
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokParenClose:
			_, _ = p.lex.Next()
			if beat == 0 {
				return &ParseError{Pos: open.Pos, Message: "empty chord group"}
			}
			return nil
		case TokEOF:
			return &ParseError{Pos: open.Pos, Message: "missing closing parenthesis"}
		case TokNewline, TokBackslash:
			_, _ = p.lex.Next()
			continue
		}
		c, err := p.chord(beat)
		if err != nil {
			return err
		}
		p.addChord(c)
		beat++
	}
}

// chord parses a scalar chord: a filler, a chord, or chord/chord.
func (p *Parser) chord(beat int) (domain.Chord, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return domain.Chord{}, err
	}
	switch tok.Kind {
	case TokPeriod:
		c := domain.Filler()
		c.BeatNumber = beat
		slash, ok, err := p.lex.ReadIf(TokSlash)
		if err != nil {
			return domain.Chord{}, err
		}
		if ok {
			return domain.Chord{}, &ParseError{Pos: slash.Pos, Message: "a filler cannot be part of a slash chord"}
		}
		return c, nil
	case TokChord:
		c, err := chordAt(tok)
		if err != nil {
			return domain.Chord{}, err
		}
		c.BeatNumber = beat
		_, ok, err := p.lex.ReadIf(TokSlash)
		if err != nil || !ok {
			return c, err
		}
		bt, err := p.lex.Next()
		if err != nil {
			return domain.Chord{}, err
		}
		switch bt.Kind {
		case TokChord:
		case TokPeriod:
			return domain.Chord{}, &ParseError{Pos: bt.Pos, Message: "a filler cannot be part of a slash chord"}
		default:
			return domain.Chord{}, &ParseError{Pos: bt.Pos, Message: fmt.Sprintf("expected chord after '/', found %s", bt.Kind)}
		}
		bass, err := chordAt(bt)
		if err != nil {
			return domain.Chord{}, err
		}
		c.Slash = &bass
		return c, nil
	default:
		return domain.Chord{}, &ParseError{Pos: tok.Pos, Message: fmt.Sprintf("expected chord, found %s", tok.Kind)}
	}
}

func chordAt(tok Token) (domain.Chord, error) {
	c, err := ParseChord(tok.Text)
	if cerr, ok := err.(*ChordSyntaxError); ok {
		cerr.Pos = tok.Pos
	}
	return c, err
}
