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

	"github.com/jung-kurt/gofpdf"

	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

// ptPerPx converts page pixels (1/100 inch) to PDF points (1/72 inch).
const ptPerPx = 0.72

// PDFCanvas writes all pages into one PDF. Fonts found in the library are
// embedded as UTF-8 TrueType fonts; anything else falls back to Helvetica.
type PDFCanvas struct {
	path  string
	title string
	lib   *textlayout.FontLibrary
	pdf   *gofpdf.Fpdf
	fonts map[string]bool
}

func NewPDFCanvas(path, title string, lib *textlayout.FontLibrary) *PDFCanvas {
	return &PDFCanvas{path: path, title: title, lib: lib, fonts: map[string]bool{}}
}

func pt(v float32) float64 { return float64(v) * ptPerPx }

func (c *PDFCanvas) BeginPage(size vector.Size) error {
	ps := gofpdf.SizeType{Wd: pt(size.W), Ht: pt(size.H)}
	if c.pdf == nil {
		c.pdf = gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: ps})
		c.pdf.SetMargins(0, 0, 0)
		c.pdf.SetAutoPageBreak(false, 0)
		if c.title != "" {
			c.pdf.SetTitle(c.title, true)
		}
		c.pdf.SetCreator("nashchart", false)
	}
	c.pdf.AddPageFormat("P", ps)
	return c.pdf.Error()
}

func (c *PDFCanvas) DrawRect(r vector.Rect, p textlayout.Paint) {
	style := ""
	if p.Fill.Enabled {
		setFillColor(c.pdf, p.Fill.Color)
		style += "F"
	}
	if p.Stroke.Enabled() {
		setDrawColor(c.pdf, p.Stroke.Color)
		c.pdf.SetLineWidth(pt(p.Stroke.Width))
		style += "D"
	}
	if style == "" {
		return
	}
	d := r.Scale(ptPerPx)
	c.pdf.Rect(float64(d.X), float64(d.Y), float64(d.W), float64(d.H), style)
}

func (c *PDFCanvas) DrawText(text string, x, baseline float32, p textlayout.Paint) {
	family, style := c.font(p.Font)
	c.pdf.SetFont(family, style, pt(p.Font.SizePt))
	col := textColor(p)
	c.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Text(pt(x), pt(baseline), text)
}

func (c *PDFCanvas) font(spec textlayout.FontSpec) (family, style string) {
	if c.lib != nil {
		if name, data, ok := c.lib.FontData(spec); ok {
			if !c.fonts[name] {
				c.pdf.AddUTF8FontFromBytes(name, "", data)
				c.fonts[name] = true
			}
			return name, ""
		}
	}
	if spec.Bold() {
		style += "B"
	}
	if spec.Italic {
		style += "I"
	}
	return "Helvetica", style
}

func (c *PDFCanvas) EndPage() error { return c.pdf.Error() }

func (c *PDFCanvas) Close() error {
	if c.pdf == nil {
		return fmt.Errorf("write pdf: no pages")
	}
	if err := c.pdf.OutputFileAndClose(c.path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
