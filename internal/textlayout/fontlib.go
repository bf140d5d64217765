/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is the bundled family used by the builtin styles.
const DefaultFamily = "Go"

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
// The raw font bytes are kept so vector sinks can embed the same face.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*loadedFont
}

type fontKey struct {
	family string
	weight int
	italic bool
}

type loadedFont struct {
	key  fontKey
	font *opentype.Font
	data []byte
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*loadedFont)} }

// DefaultLibrary returns a library with the Go font family registered under
// DefaultFamily and "Go Mono".
func DefaultLibrary() *FontLibrary {
	fl := NewFontLibrary()
	for _, f := range []struct {
		family string
		weight int
		italic bool
		data   []byte
	}{
		{DefaultFamily, 400, false, goregular.TTF},
		{DefaultFamily, 700, false, gobold.TTF},
		{DefaultFamily, 400, true, goitalic.TTF},
		{DefaultFamily, 700, true, gobolditalic.TTF},
		{"Go Mono", 400, false, gomono.TTF},
	} {
		if err := fl.LoadBytes(f.family, f.weight, f.italic, f.data); err != nil {
			panic(err)
		}
	}
	return fl
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, weight, italic, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

func (fl *FontLibrary) LoadBytes(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	k := fontKey{family: family, weight: weight, italic: italic}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*loadedFont)
	}
	fl.fonts[k] = &loadedFont{key: k, font: f, data: data}
	return nil
}

func (fl *FontLibrary) find(spec FontSpec) *loadedFont {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: normWeight(spec.Weight), italic: spec.Italic}]; ok {
		return f
	}
	// Same family, closest match on boldness then slant.
	var best *loadedFont
	bestScore := -1
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		score := 0
		if (k.weight >= 600) == spec.Bold() {
			score += 2
		}
		if k.italic == spec.Italic {
			score++
		}
		if score > bestScore || (score == bestScore && k.weight < best.key.weight) {
			best, bestScore = f, score
		}
	}
	return best
}

func normWeight(w int) int {
	if w <= 0 {
		return 400
	}
	return w
}

// FontData returns the raw bytes of the face that spec resolves to and a
// stable name for it.
func (fl *FontLibrary) FontData(spec FontSpec) (name string, data []byte, ok bool) {
	f := fl.find(spec)
	if f == nil {
		return "", nil, false
	}
	name = f.key.family + "-" + strconv.Itoa(f.key.weight)
	if f.key.italic {
		name += "i"
	}
	return name, f.data, true
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another
// Provider. Faces are created once per spec and reused.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]font.Face
}

func NewOTProvider(lib *FontLibrary) *OTProvider { return &OTProvider{Lib: lib} }

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	p.mu.Lock()
	face, ok := p.faces[spec]
	if !ok {
		face = p.newFace(spec)
		if face != nil {
			if p.faces == nil {
				p.faces = make(map[FontSpec]font.Face)
			}
			p.faces[spec] = face
		}
	}
	p.mu.Unlock()
	if face != nil {
		return face, faceMetrics(face)
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

func (p *OTProvider) newFace(spec FontSpec) font.Face {
	f := p.Lib.find(spec)
	if f == nil {
		return nil
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil
	}
	return face
}
