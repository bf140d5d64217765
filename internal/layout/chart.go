/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"fmt"

	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

// Role selects the Paint of the style an item is drawn with.
type Role int

const (
	RoleChord Role = iota
	RoleChordSmall
	RoleBarFrame
	RoleDivider
	RoleTitle
	RoleSubtitle
	RoleText
	RoleSmall
)

var roleNames = [...]string{"chord", "chord_small", "bar_frame", "divider", "title", "subtitle", "text", "small"}

func (r Role) String() string {
	if int(r) >= 0 && int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Paint returns the style attributes for r.
func (r Role) Paint(s textlayout.Style) textlayout.Paint {
	switch r {
	case RoleChord:
		return s.Chord
	case RoleChordSmall:
		return s.ChordSmall
	case RoleBarFrame:
		return s.BarFrame
	case RoleDivider:
		return s.Divider
	case RoleTitle:
		return s.Title
	case RoleSubtitle:
		return s.Subtitle
	case RoleSmall:
		return s.Small
	default:
		return s.Text
	}
}

type ItemKind int

const (
	ItemText ItemKind = iota
	ItemRect
)

// Item is one draw command. Rect is the occupied box in page pixels; for
// text, Baseline is the y of the baseline the string is drawn on.
type Item struct {
	Kind     ItemKind
	Role     Role
	Text     string
	Rect     vector.Rect
	Baseline float32
}

type Page struct {
	Items []Item
}

// Chart is the laid out song: the style it was laid out with and its pages.
type Chart struct {
	Style textlayout.Style
	Pages []Page
}

func (c *Chart) Size() vector.Size { return c.Style.Page }

// UnsupportedSectionError is returned for a section type the engine does
// not know how to place.
type UnsupportedSectionError struct {
	Index int
	Type  string
}

func (e *UnsupportedSectionError) Error() string {
	return fmt.Sprintf("layout: unsupported section %s at index %d", e.Type, e.Index)
}
