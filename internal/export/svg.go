/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

// SVGCanvas writes one SVG file per page. The viewBox uses page pixels; the
// width and height attributes carry the physical size at dpi.
type SVGCanvas struct {
	path string
	dpi  int
	buf  bytes.Buffer
	werr error
	page int
}

func NewSVGCanvas(path string, dpi int) *SVGCanvas {
	return &SVGCanvas{path: path, dpi: dpi}
}

func (c *SVGCanvas) wf(format string, args ...any) {
	if c.werr != nil {
		return
	}
	_, c.werr = fmt.Fprintf(&c.buf, format, args...)
}

func (c *SVGCanvas) BeginPage(size vector.Size) error {
	c.buf.Reset()
	c.werr = nil
	scale := float64(c.dpi) / 100
	pxW := int(math.Round(float64(size.W) * scale))
	pxH := int(math.Round(float64(size.H) * scale))
	c.wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	c.wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, size.W, size.H)
	c.wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", size.W, size.H)
	return c.werr
}

func (c *SVGCanvas) DrawRect(r vector.Rect, p textlayout.Paint) {
	fill := "none"
	if p.Fill.Enabled {
		fill = p.Fill.Color.Hex()
	}
	if !p.Stroke.Enabled() {
		if fill == "none" {
			return
		}
		c.wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", r.X, r.Y, r.W, r.H, fill)
		return
	}
	// The border is drawn inside r.
	hw := p.Stroke.Width / 2
	in := r.Inset(hw, hw)
	c.wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
		in.X, in.Y, in.W, in.H, fill, p.Stroke.Color.Hex(), p.Stroke.Width)
}

func (c *SVGCanvas) DrawText(text string, x, baseline float32, p textlayout.Paint) {
	family := p.Font.Family
	if family == "" {
		family = textlayout.DefaultFamily
	}
	weight := ""
	if p.Font.Bold() {
		weight = " font-weight=\"bold\""
	}
	style := ""
	if p.Font.Italic {
		style = " font-style=\"italic\""
	}
	c.wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s, sans-serif\" font-size=\"%g\"%s%s fill=\"%s\" xml:space=\"preserve\">%s</text>\n",
		x, baseline, escAttr(family), p.Font.SizePt, weight, style, textColor(p).Hex(), escText(text))
}

func (c *SVGCanvas) EndPage() error {
	c.wf("</svg>\n")
	if c.werr != nil {
		return fmt.Errorf("build svg: %w", c.werr)
	}
	name := PagePath(c.path, c.page)
	c.page++
	if err := os.WriteFile(name, c.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func (c *SVGCanvas) Close() error { return nil }

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
