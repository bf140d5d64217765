/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed scales.json
var scalesJSON []byte

//go:embed scales.schema.json
var scalesSchema []byte

// MusicKey holds the letter names of the 12 semitones starting at the tonic.
// Keys are shared by reference and never mutated.
type MusicKey struct {
	Name string
	Keys [12]string
}

// UnknownKeyError is returned when a key name is not in the table.
type UnknownKeyError struct {
	Name string
}

func (e *UnknownKeyError) Error() string { return fmt.Sprintf("unknown key %q", e.Name) }

// KeyTable maps key names to MusicKeys. It is loaded once and read-only afterwards.
type KeyTable struct {
	keys  map[string]*MusicKey
	names []string
}

// LoadKeyTable parses the bundled key table.
func LoadKeyTable() (*KeyTable, error) { return ParseKeyTable(scalesJSON) }

// ParseKeyTable validates data against the key table schema and builds a KeyTable.
func ParseKeyTable(data []byte) (*KeyTable, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(scalesSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate key table: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid key table: %s", strings.Join(msgs, "; "))
	}
	var raw struct {
		Scales map[string][]string `json:"scales"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse key table: %w", err)
	}
	t := &KeyTable{keys: make(map[string]*MusicKey, len(raw.Scales))}
	for name, letters := range raw.Scales {
		k := &MusicKey{Name: name}
		copy(k.Keys[:], letters)
		t.keys[name] = k
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Lookup returns the key with the given name. The empty name and "none"
// resolve to nil, meaning chords render as numbers.
func (t *KeyTable) Lookup(name string) (*MusicKey, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return nil, nil
	}
	if t != nil {
		if k, ok := t.keys[name]; ok {
			return k, nil
		}
	}
	return nil, &UnknownKeyError{Name: name}
}

// Names lists key names in sorted order.
func (t *KeyTable) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}
