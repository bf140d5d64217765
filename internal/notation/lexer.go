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
	"strings"
	"unicode/utf8"
)

// Lexer produces tokens lazily from a source string. Whitespace tokens are
// dropped; line breaks are kept because they carry layout meaning.
type Lexer struct {
	src    string
	pos    Position
	start  Position
	peeked *Token
	err    error
}

// NewLexer returns a lexer over src. name is used in positions only.
func NewLexer(name, src string) *Lexer {
	l := &Lexer{src: src}
	l.start = Position{File: name, Line: 1, Column: 1}
	l.pos = l.start
	return l
}

// Reset rewinds the lexer to the beginning of its input.
func (l *Lexer) Reset() {
	l.pos = l.start
	l.peeked = nil
	l.err = nil
}

// Pos returns the position of the next unread character.
func (l *Lexer) Pos() Position { return l.pos }

func (l *Lexer) advance(text string) {
	for _, r := range text {
		if r == '\n' {
			l.pos.Line++
			l.pos.Column = 1
		} else {
			l.pos.Column++
		}
	}
	l.pos.Offset += len(text)
}

func (l *Lexer) scan() (Token, error) {
	rest := l.src[l.pos.Offset:]
	if rest == "" {
		return Token{Kind: TokEOF, Pos: l.pos}, nil
	}
	n, kind := tokenDFA.match(rest)
	if n == 0 {
		r, _ := utf8.DecodeRuneInString(rest)
		msg := fmt.Sprintf("unexpected character %q", r)
		if r == '"' {
			msg = "unterminated string"
		}
		return Token{}, &LexError{Pos: l.pos, Message: msg}
	}
	tok := Token{Kind: kind, Text: rest[:n], Pos: l.pos}
	l.advance(tok.Text)
	return tok, nil
}

func (l *Lexer) read() (Token, error) {
	for {
		tok, err := l.scan()
		if err != nil || tok.Kind != TokWhitespace {
			return tok, err
		}
	}
}

// Next consumes and returns the next token. At the end of input it keeps
// returning a TokEOF token.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil || l.err != nil {
		tok, err := l.Peek()
		l.peeked, l.err = nil, nil
		return tok, err
	}
	return l.read()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked == nil && l.err == nil {
		tok, err := l.read()
		if err != nil {
			l.err = err
		} else {
			l.peeked = &tok
		}
	}
	if l.err != nil {
		return Token{}, l.err
	}
	return *l.peeked, nil
}

// ReadIf consumes the next token only if it has the given kind.
func (l *Lexer) ReadIf(kind Kind) (Token, bool, error) {
	tok, err := l.Peek()
	if err != nil || tok.Kind != kind {
		return tok, false, err
	}
	_, _ = l.Next()
	return tok, true, nil
}

// Tokens lexes all of src. The trailing TokEOF is not included.
func Tokens(name, src string) ([]Token, error) {
	l := NewLexer(name, src)
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return out, err
		}
		if tok.Kind == TokEOF {
			return out, nil
		}
		out = append(out, tok)
	}
}

// unquote strips the quotes of a string token and resolves escapes: a
// backslash takes the following character literally.
func unquote(text string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	escaped := false
	for _, r := range body {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}
