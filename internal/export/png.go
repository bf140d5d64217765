/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

// PNGCanvas rasterizes pages at dpi, one file per page.
type PNGCanvas struct {
	path     string
	scale    float32
	provider textlayout.Provider
	img      *image.RGBA
	page     int
}

func NewPNGCanvas(path string, dpi int, lib *textlayout.FontLibrary) *PNGCanvas {
	scale := float32(dpi) / 100
	p := textlayout.NewOTProvider(lib)
	p.DPI = 72 * float64(scale)
	return &PNGCanvas{path: path, scale: scale, provider: p}
}

func (c *PNGCanvas) px(v float32) int { return round(v * c.scale) }

func round(v float32) int { return int(math.Round(float64(v))) }

func (c *PNGCanvas) BeginPage(size vector.Size) error {
	c.img = image.NewRGBA(image.Rect(0, 0, c.px(size.W), c.px(size.H)))
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	return nil
}

func (c *PNGCanvas) DrawRect(r vector.Rect, p textlayout.Paint) {
	dev := r.Scale(c.scale)
	lo, hi := dev.Min(), dev.Max()
	x0, y0 := round(lo.X), round(lo.Y)
	x1, y1 := round(hi.X)-1, round(hi.Y)-1
	if p.Fill.Enabled {
		fillRect(c.img, x0, y0, x1, y1, toRGBA(p.Fill.Color))
	}
	if p.Stroke.Enabled() {
		w := max(1, c.px(p.Stroke.Width))
		strokeRect(c.img, x0, y0, x1, y1, w, toRGBA(p.Stroke.Color))
	}
}

func (c *PNGCanvas) DrawText(text string, x, baseline float32, p textlayout.Paint) {
	face, _ := c.provider.Resolve(p.Font)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(textColor(p).NRGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * c.scale * 64), Y: fixed.Int26_6(baseline * c.scale * 64)},
	}
	d.DrawString(text)
}

func (c *PNGCanvas) EndPage() error {
	name := PagePath(c.path, c.page)
	c.page++
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, c.img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func (c *PNGCanvas) Close() error {
	c.img = nil
	return nil
}

func toRGBA(c vector.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws an axis-aligned border of width w inside the inclusive
// box x0,y0..x1,y1.
func strokeRect(img *image.RGBA, x0, y0, x1, y1, w int, col color.RGBA) {
	fillRect(img, x0, y0, x1, y0+w-1, col)
	fillRect(img, x0, y1-w+1, x1, y1, col)
	fillRect(img, x0, y0, x0+w-1, y1, col)
	fillRect(img, x1-w+1, y0, x1, y1, col)
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}
