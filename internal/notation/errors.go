/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package notation turns chord-chart source text into a domain.Song.
// Lexing is driven by a DFA table over character classes (dfa.go); the
// parser is single pass with one token of lookahead and no recovery.
package notation

import (
	"fmt"
	"strconv"
)

// Position is a location in the source. Line and Column are 1-based;
// Column counts runes. Offset is the 0-based byte offset.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	s := strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	if p.File != "" {
		return p.File + ":" + s
	}
	return s
}

// LexError reports a character sequence that matches no token.
type LexError struct {
	Pos     Position
	Message string
}

func (e *LexError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// ParseError reports a malformed token sequence.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// ChordSyntaxError reports a chord token whose characters do not fit the
// chord grammar. Char is the offending character (0 if the token ended early).
type ChordSyntaxError struct {
	Pos   Position
	Token string
	Char  rune
	Msg   string
}

func (e *ChordSyntaxError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("%s: bad chord %q: %s %q", e.Pos, e.Token, e.Msg, string(e.Char))
	}
	return fmt.Sprintf("%s: bad chord %q: %s", e.Pos, e.Token, e.Msg)
}
