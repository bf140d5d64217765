/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// GroupBars partitions a chord sequence into bars. A chord with
// BeatNumber <= 0 starts a new bar; the first chord always starts bar 0.
// When beatsPerBar > 0, every bar shorter than beatsPerBar is padded with
// trailing filler chords. Bars longer than beatsPerBar are left intact.
func GroupBars(chords []Chord, beatsPerBar int) [][]Chord {
	var bars [][]Chord
	for i, c := range chords {
		if i == 0 || c.BeatNumber <= 0 {
			bars = append(bars, nil)
		}
		last := len(bars) - 1
		bars[last] = append(bars[last], c)
	}
	if beatsPerBar <= 0 {
		return bars
	}
	for i, bar := range bars {
		if len(bar) == 0 {
			continue
		}
		for len(bar) < beatsPerBar {
			f := Filler()
			f.BeatNumber = len(bar)
			bar = append(bar, f)
		}
		bars[i] = bar
	}
	return bars
}

// Bars groups the sequence using its own beats-per-bar setting.
func (s ChordSequence) Bars() [][]Chord { return GroupBars(s.Chords, s.BeatsPerBar) }
