/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectInset(t *testing.T) {
	in := R(10, 20, 100, 50).Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if g := R(10, 20, 100, 50).Inset(-1, -1); g != R(9, 19, 102, 52) {
		t.Fatalf("negative inset: %+v", g)
	}
}

func TestRectOverlaps(t *testing.T) {
	a := R(0, 0, 10, 10)
	if a.Overlaps(R(10, 0, 10, 10)) {
		t.Fatalf("edge-adjacent rects must not overlap")
	}
	if !a.Overlaps(R(9, 9, 5, 5)) {
		t.Fatalf("expected overlap")
	}
}

func TestRectScaleCorners(t *testing.T) {
	r := R(1, 2, 3, 4).Scale(2)
	if r != R(2, 4, 6, 8) {
		t.Fatalf("scale: %+v", r)
	}
	if r.Min() != (Pt{2, 4}) || r.Max() != (Pt{8, 12}) {
		t.Fatalf("corners: %+v %+v", r.Min(), r.Max())
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#f80")
	if err != nil || c != (Color{255, 136, 0, 255}) {
		t.Fatalf("ParseHex short: %+v %v", c, err)
	}
	c, err = ParseHex("1a2b3c")
	if err != nil || c.Hex() != "#1a2b3c" {
		t.Fatalf("ParseHex long: %+v %v", c, err)
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestColorUnmarshal(t *testing.T) {
	var c Color
	if err := c.UnmarshalText([]byte("#0a0b0c")); err != nil || c != (Color{10, 11, 12, 255}) {
		t.Fatalf("text: %+v %v", c, err)
	}
	if err := c.UnmarshalTOML(map[string]any{"r": int64(200)}); err != nil || c != (Color{200, 11, 12, 255}) {
		t.Fatalf("partial table: %+v %v", c, err)
	}
	if err := c.UnmarshalTOML(map[string]any{"g": int64(256)}); err == nil {
		t.Fatalf("expected channel range error")
	}
	if err := c.UnmarshalTOML(true); err == nil {
		t.Fatalf("expected type error")
	}
}
