/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notation

// Kind identifies a token type.
type Kind int

const (
	TokEOF Kind = iota
	TokWhitespace
	TokNewline
	TokString
	TokChord
	TokSlash
	TokBackslash
	TokParenOpen
	TokParenClose
	TokPeriod
	TokTitle
	TokSubtitle
	TokText
	TokSmallText
	TokBeats
	TokKey
	TokTab
	TokTabClear
)

var kindNames = map[Kind]string{
	TokEOF:        "end of input",
	TokWhitespace: "whitespace",
	TokNewline:    "line break",
	TokString:     "string",
	TokChord:      "chord",
	TokSlash:      "'/'",
	TokBackslash:  "'\\'",
	TokParenOpen:  "'('",
	TokParenClose: "')'",
	TokPeriod:     "'.'",
	TokTitle:      "title:",
	TokSubtitle:   "subtitle:",
	TokText:       "text:",
	TokSmallText:  "small:",
	TokBeats:      "beats:",
	TokKey:        "key:",
	TokTab:        "tab",
	TokTabClear:   "tabclear",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Token is one lexeme with its source position.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}
