/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is an 8-bit non-premultiplied RGBA color.
type Color struct {
	R uint8 `json:"r" yaml:"r" toml:"r"`
	G uint8 `json:"g" yaml:"g" toml:"g"`
	B uint8 `json:"b" yaml:"b" toml:"b"`
	A uint8 `json:"a" yaml:"a" toml:"a"`
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Gray        = Color{128, 128, 128, 255}
	Transparent = Color{0, 0, 0, 0}
)

func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Hex formats the color as #rrggbb; alpha is dropped.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseHex reads #rgb or #rrggbb.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("bad color %q: %w", s, err)
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%2x%2x%2x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("bad color %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	return Color{r, g, b, 255}, nil
}

// UnmarshalText reads a hex color, so YAML style files may write
// color: "#336699" in place of an {r, g, b, a} map.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// UnmarshalTOML accepts a hex string or an {r, g, b, a} table. Channels
// missing from a table keep their current value.
func (c *Color) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case map[string]any:
		for k, dst := range map[string]*uint8{"r": &c.R, "g": &c.G, "b": &c.B, "a": &c.A} {
			raw, ok := v[k]
			if !ok {
				continue
			}
			n, ok := raw.(int64)
			if !ok || n < 0 || n > 255 {
				return fmt.Errorf("bad color channel %s: %v", k, raw)
			}
			*dst = uint8(n)
		}
		return nil
	default:
		return fmt.Errorf("bad color %v", v)
	}
}

// Stroke describes an outline. A zero Width means no outline.
type Stroke struct {
	Color Color   `json:"color" yaml:"color" toml:"color"`
	Width float32 `json:"width" yaml:"width" toml:"width"`
}

func (s Stroke) Enabled() bool { return s.Width > 0 && s.Color.A > 0 }

// Fill describes an interior paint.
type Fill struct {
	Color   Color `json:"color" yaml:"color" toml:"color"`
	Enabled bool  `json:"enabled" yaml:"enabled" toml:"enabled"`
}
