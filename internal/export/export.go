/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes laid out charts to PNG, PDF and SVG files and songs
// to plain text. Every vector or raster sink implements Canvas, so the
// same draw loop feeds all of them.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nashchart/internal/domain"
	"nashchart/internal/layout"
	"nashchart/internal/textlayout"
	"nashchart/internal/vector"
)

// Canvas consumes draw commands in page pixels.
type Canvas interface {
	BeginPage(size vector.Size) error
	DrawRect(r vector.Rect, p textlayout.Paint)
	DrawText(text string, x, baseline float32, p textlayout.Paint)
	EndPage() error
	Close() error
}

// Render replays every item of chart onto c and closes it.
func Render(c Canvas, chart *layout.Chart) error {
	for _, pg := range chart.Pages {
		if err := c.BeginPage(chart.Size()); err != nil {
			return err
		}
		for _, it := range pg.Items {
			p := it.Role.Paint(chart.Style)
			switch it.Kind {
			case layout.ItemRect:
				c.DrawRect(it.Rect, p)
			case layout.ItemText:
				c.DrawText(it.Text, it.Rect.X, it.Baseline, p)
			}
		}
		if err := c.EndPage(); err != nil {
			return err
		}
	}
	return c.Close()
}

type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatTXT Format = "txt"
)

var formats = []Format{FormatPNG, FormatPDF, FormatSVG, FormatTXT}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want png, pdf, svg or txt)", s)
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	f, err := ParseFormat(filepath.Ext(path))
	return f, err == nil
}

// Options controls file output. DPI applies to raster output and to the
// nominal size of SVG output; the default is 300.
type Options struct {
	DPI   int
	Fonts *textlayout.FontLibrary
	Title string
	// Key and Keys render the text format in a key.
	Key  string
	Keys *domain.KeyTable
}

func (o Options) dpi() int {
	if o.DPI <= 0 {
		return 300
	}
	return o.DPI
}

func (o Options) fonts() *textlayout.FontLibrary {
	if o.Fonts == nil {
		return textlayout.DefaultLibrary()
	}
	return o.Fonts
}

// Write renders to path in format f. Multi-page raster and SVG output goes
// to one file per page (see PagePath); txt uses the song instead of the chart.
func Write(path string, f Format, song domain.Song, chart *layout.Chart, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	switch f {
	case FormatPNG:
		return Render(NewPNGCanvas(path, opt.dpi(), opt.fonts()), chart)
	case FormatSVG:
		return Render(NewSVGCanvas(path, opt.dpi()), chart)
	case FormatPDF:
		return Render(NewPDFCanvas(path, opt.Title, opt.fonts()), chart)
	case FormatTXT:
		key, err := opt.Keys.Lookup(opt.Key)
		if err != nil {
			return err
		}
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create txt: %w", err)
		}
		if err := WriteText(out, song, key, opt.Keys); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// PagePath names the file of page i (0-based): the first page keeps path,
// later pages get "-<n>" before the extension.
func PagePath(path string, i int) string {
	if i == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i+1, ext)
}

func textColor(p textlayout.Paint) vector.Color {
	if p.Color.A == 0 {
		return vector.Black
	}
	return p.Color
}
