/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "sort"

// StyleSheet resolves chart styles by name. User styles (loaded from style
// packs) shadow builtins of the same name; builtins are also reachable by
// index.
type StyleSheet struct {
	User map[string]Style
}

func NewStyleSheet() *StyleSheet {
	return &StyleSheet{User: map[string]Style{}}
}

// WithUser returns a copy with the given styles merged into the user scope.
func (s *StyleSheet) WithUser(over map[string]Style) *StyleSheet {
	cp := &StyleSheet{User: make(map[string]Style, len(s.User)+len(over))}
	for k, v := range s.User {
		cp.User[k] = v
	}
	for k, v := range over {
		v.Name = k
		cp.User[k] = v.Normalize()
	}
	return cp
}

// Resolve returns the effective Style. An empty name yields the default.
func (s *StyleSheet) Resolve(name string) (Style, bool) {
	if name == "" {
		return DefaultStyle(), true
	}
	if s != nil {
		if st, ok := s.User[name]; ok {
			return st, true
		}
	}
	return GetStyle(name)
}

// Names lists builtins in index order followed by user-only names sorted.
func (s *StyleSheet) Names() []string {
	out := ListStyles()
	seen := map[string]bool{}
	for _, n := range out {
		seen[n] = true
	}
	var extra []string
	if s != nil {
		for k := range s.User {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
