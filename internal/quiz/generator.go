/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package quiz generates practice charts of random Nashville-number chords.
// Sampling favors the degrees listed first and the generated sequence never
// repeats a degree within two positions.
package quiz

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"nashchart/internal/domain"
	applog "nashchart/internal/log"
)

// Sampling shape constants.
const (
	sampleShift = 0.15
	sampleScale = 1.7
)

// DefaultDegrees lists degrees by decreasing frequency of use.
const DefaultDegrees = "4 5 6 2 7 3 1"

// ParseDegrees parses a space separated degree list such as DefaultDegrees.
func ParseDegrees(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Fields(s) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > 7 {
			return nil, fmt.Errorf("not a Nashville degree: %q", f)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty degree list")
	}
	return out, nil
}

// ResolveSeed returns seed, or a seed derived from the clock when seed <= 0.
func ResolveSeed(seed int64) int64 {
	if seed > 0 {
		return seed
	}
	return 1 + time.Now().UnixMilli()&0xffff
}

// Generator draws chord sequences. It is not safe for concurrent use.
type Generator struct {
	rng     *rand.Rand
	degrees []int
	slash   bool
	seed    int64
}

// NewGenerator returns a generator over degrees (most common first). The
// list needs at least three distinct degrees, otherwise no sequence can
// avoid near repeats.
func NewGenerator(seed int64, degrees []int, slash bool) (*Generator, error) {
	distinct := map[int]bool{}
	for _, d := range degrees {
		if d < 1 || d > 7 {
			return nil, fmt.Errorf("not a Nashville degree: %d", d)
		}
		distinct[d] = true
	}
	if len(distinct) < 3 {
		return nil, fmt.Errorf("need at least 3 distinct degrees, got %d", len(distinct))
	}
	seed = ResolveSeed(seed)
	applog.WithComponent("quiz").Debug("generator seeded", "seed", seed, "degrees", degrees)
	s := uint64(seed)
	return &Generator{
		rng:     rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
		degrees: append([]int(nil), degrees...),
		slash:   slash,
		seed:    seed,
	}, nil
}

// Seed returns the resolved seed.
func (g *Generator) Seed() int64 { return g.seed }

// BiasedSample returns count indexes in [0, n). Lower indexes are more
// likely: each draw is floor((u1*u2 - 0.15) * 1.7 * n) for uniform u1, u2,
// redrawn when it falls outside the range.
func (g *Generator) BiasedSample(n, count int) []int {
	out := make([]int, 0, count)
	for len(out) < count {
		u := g.rng.Float32() * g.rng.Float32()
		k := int(math.Floor(float64((u - sampleShift) * sampleScale * float32(n))))
		if k < 0 || k >= n {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Chords returns n chords. Roughly one in three becomes a slash chord over
// a different degree when slash chords are enabled.
func (g *Generator) Chords(n int) []domain.Chord {
	chords := make([]domain.Chord, 0, n)
	for len(chords) < n {
		idx := g.BiasedSample(len(g.degrees), n)
		for i := 0; len(chords) < n; i++ {
			root := g.degrees[idx[i]]
			c := domain.NewChord(root)
			if g.slash && g.rng.IntN(30) < 10 {
				bass := root
				for bass == root {
					bass = g.rng.IntN(7) + 1
				}
				c = domain.SlashChord(root, bass)
			}
			chords = append(chords, c)
		}
		chords = Repair(chords)
	}
	return chords
}

// Repair reorders chords so that no degree repeats at distance one or two.
// Each position j+1 that clashes with j or j-1 is swapped with the first
// later chord that clashes with neither; when none is left the sequence is
// cut at j+1. Repair works in place and returns the possibly shorter slice.
func Repair(chords []domain.Chord) []domain.Chord {
	for j := 0; j < len(chords)-1; j++ {
		c1 := chords[j]
		c0 := c1
		if j > 0 {
			c0 = chords[j-1]
		}
		k := j + 1
		for k < len(chords) && (chords[k].Number == c1.Number || chords[k].Number == c0.Number) {
			k++
		}
		if k == j+1 {
			continue
		}
		if k == len(chords) {
			return chords[:j+1]
		}
		chords[j+1], chords[k] = chords[k], chords[j+1]
	}
	return chords
}
