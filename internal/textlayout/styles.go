/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strconv"

	"nashchart/internal/vector"
)

// Paint is the drawing attribute set for one role: a font for text items,
// a stroke for outlines, and a fill for solid shapes.
type Paint struct {
	Font   FontSpec      `json:"font" yaml:"font" toml:"font"`
	Color  vector.Color  `json:"color" yaml:"color" toml:"color"`
	Stroke vector.Stroke `json:"stroke" yaml:"stroke" toml:"stroke"`
	Fill   vector.Fill   `json:"fill" yaml:"fill" toml:"fill"`
}

// Style is the immutable visual configuration of a chart. All lengths are
// logical page pixels.
type Style struct {
	Name string `json:"name" yaml:"name" toml:"name"`

	Chord      Paint `json:"chord" yaml:"chord" toml:"chord"`
	ChordSmall Paint `json:"chord_small" yaml:"chord_small" toml:"chord_small"`
	BarFrame   Paint `json:"bar_frame" yaml:"bar_frame" toml:"bar_frame"`
	Divider    Paint `json:"divider" yaml:"divider" toml:"divider"`
	Title      Paint `json:"title" yaml:"title" toml:"title"`
	Subtitle   Paint `json:"subtitle" yaml:"subtitle" toml:"subtitle"`
	Text       Paint `json:"text" yaml:"text" toml:"text"`
	Small      Paint `json:"small" yaml:"small" toml:"small"`

	MeanChordWidth float32 `json:"mean_chord_width" yaml:"mean_chord_width" toml:"mean_chord_width"`
	ChordHeight    float32 `json:"chord_height" yaml:"chord_height" toml:"chord_height"`
	DashHeight     float32 `json:"dash_height" yaml:"dash_height" toml:"dash_height"`
	BarPadX        float32 `json:"bar_pad_x" yaml:"bar_pad_x" toml:"bar_pad_x"`
	BarPadY        float32 `json:"bar_pad_y" yaml:"bar_pad_y" toml:"bar_pad_y"`
	ChordPadX      float32 `json:"chord_pad_x" yaml:"chord_pad_x" toml:"chord_pad_x"`
	SectionSpacing float32 `json:"section_spacing" yaml:"section_spacing" toml:"section_spacing"`
	// DashOffset is the distance from the divider down to the bass line.
	DashOffset float32 `json:"dash_offset" yaml:"dash_offset" toml:"dash_offset"`

	Page   vector.Size `json:"page" yaml:"page" toml:"page"`
	Margin float32     `json:"margin" yaml:"margin" toml:"margin"`
}

// Letter page at 100 px/inch.
var (
	DefaultPage   = vector.Size{W: 850, H: 1100}
	DefaultMargin = float32(25)
)

const baseFontSize = 18

func textPaints(s *Style) {
	regular := FontSpec{Family: DefaultFamily, SizePt: baseFontSize, Weight: 400}
	bold := FontSpec{Family: DefaultFamily, SizePt: baseFontSize, Weight: 700}
	s.Title = Paint{Font: bold.Scaled(1.5), Color: vector.Black}
	s.Subtitle = Paint{Font: bold, Color: vector.Black}
	s.Text = Paint{Font: regular.Scaled(0.7), Color: vector.Black}
	s.Small = Paint{Font: regular.Scaled(0.6), Color: vector.Black}
	s.Divider = Paint{Color: vector.Black, Fill: vector.Fill{Color: vector.Black, Enabled: true}}
	s.Page = DefaultPage
	s.Margin = DefaultMargin
}

func compactStyle() Style {
	chord := FontSpec{Family: DefaultFamily, SizePt: baseFontSize, Weight: 400}
	s := Style{
		Name:           "compact",
		Chord:          Paint{Font: chord.Scaled(1.2), Color: vector.Black},
		ChordSmall:     Paint{Font: chord.Scaled(0.8), Color: vector.Black},
		BarFrame:       Paint{Stroke: vector.Stroke{Color: vector.Black, Width: 2}},
		MeanChordWidth: 26,
		ChordHeight:    30,
		DashHeight:     2,
		BarPadX:        10,
		BarPadY:        7,
		ChordPadX:      9,
		SectionSpacing: 20,
		DashOffset:     14,
	}
	textPaints(&s)
	return s
}

func largeStyle() Style {
	chord := FontSpec{Family: DefaultFamily, SizePt: baseFontSize, Weight: 400}
	s := Style{
		Name:           "large",
		Chord:          Paint{Font: chord.Scaled(1.8), Color: vector.Black},
		ChordSmall:     Paint{Font: chord, Color: vector.Black},
		BarFrame:       Paint{Stroke: vector.Stroke{Color: vector.Black, Width: 3}},
		MeanChordWidth: 35,
		ChordHeight:    48,
		DashHeight:     3,
		BarPadX:        15,
		BarPadY:        10,
		ChordPadX:      12,
		SectionSpacing: 34,
		DashOffset:     10,
	}
	textPaints(&s)
	return s
}

var builtinStyles = []Style{compactStyle(), largeStyle()}

// GetStyle returns a builtin style by name or by index ("0", "1").
func GetStyle(name string) (Style, bool) {
	for _, s := range builtinStyles {
		if s.Name == name {
			return s, true
		}
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(builtinStyles) {
		return builtinStyles[i], true
	}
	return Style{}, false
}

// DefaultStyle is the compact preset.
func DefaultStyle() Style { return builtinStyles[0] }

// ListStyles lists the names of the builtin styles in index order.
func ListStyles() []string {
	out := make([]string, len(builtinStyles))
	for i, s := range builtinStyles {
		out[i] = s.Name
	}
	return out
}

// Normalize fills zero-valued page geometry with the defaults so partially
// specified user styles lay out on a letter page.
func (s Style) Normalize() Style {
	if s.Page.W <= 0 || s.Page.H <= 0 {
		s.Page = DefaultPage
	}
	if s.Margin <= 0 {
		s.Margin = DefaultMargin
	}
	return s
}

// Content returns the printable area of the page.
func (s Style) Content() vector.Rect {
	return vector.R(s.Margin, s.Margin, s.Page.W-2*s.Margin, s.Page.H-2*s.Margin)
}
