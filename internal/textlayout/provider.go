/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement sits behind Provider so the layout engine stays
// deterministic: tests use the fixed 7x13 bitmap face, real renders use
// OpenType faces from a FontLibrary.

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font. SizePt is in points at 72 DPI, so
// one point is one logical page pixel.
type FontSpec struct {
	Family string  `json:"family" yaml:"family" toml:"family"`
	SizePt float32 `json:"size" yaml:"size" toml:"size"`
	Weight int     `json:"weight,omitempty" yaml:"weight,omitempty" toml:"weight,omitempty"` // 100..900
	Italic bool    `json:"italic,omitempty" yaml:"italic,omitempty" toml:"italic,omitempty"`
}

// Bold reports whether the weight maps to a bold face.
func (f FontSpec) Bold() bool { return f.Weight >= 600 }

// Scaled returns a copy with the size multiplied by k.
func (f FontSpec) Scaled(k float32) FontSpec {
	f.SizePt *= k
	return f
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

func (m Metrics) Height() float32 { return m.Ascent + m.Descent }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// It ignores the requested size.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, faceMetrics(f)
}

func faceMetrics(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

func toPx(v fixed.Int26_6) float32 { return float32(v) / 64 }
