/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack loads user chart styles from YAML or TOML files and
// shares them as zip archives.
//
// A style file overrides fields of a builtin preset named by "base"
// (default "compact"):
//
//	name: roomy
//	base: large
//	bar_pad_y: 16
//	chord:
//	  font: {family: Go, size: 30, weight: 700}
package stylepack

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	applog "nashchart/internal/log"
	"nashchart/internal/textlayout"
)

//go:embed style.schema.json
var styleSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(styleSchema)

// Syntax is the encoding of a style file.
type Syntax int

const (
	YAML Syntax = iota
	TOML
)

// SyntaxFor maps a file name to its syntax by extension.
func SyntaxFor(path string) (Syntax, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, true
	case ".toml":
		return TOML, true
	}
	return 0, false
}

// InvalidStyleError reports schema violations in a style file.
type InvalidStyleError struct {
	Path     string
	Problems []string
}

func (e *InvalidStyleError) Error() string {
	return fmt.Sprintf("invalid style %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Parse validates data and returns the resulting style. name is used when
// the file has no name field.
func Parse(data []byte, syn Syntax, name string) (textlayout.Style, error) {
	raw := map[string]any{}
	var err error
	switch syn {
	case TOML:
		_, err = toml.Decode(string(data), &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return textlayout.Style{}, fmt.Errorf("decode style %s: %w", name, err)
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return textlayout.Style{}, fmt.Errorf("validate style %s: %w", name, err)
	}
	if !res.Valid() {
		e := &InvalidStyleError{Path: name}
		for _, re := range res.Errors() {
			e.Problems = append(e.Problems, re.String())
		}
		return textlayout.Style{}, e
	}

	baseName, _ := raw["base"].(string)
	if baseName == "" {
		baseName = textlayout.DefaultStyle().Name
	}
	st, ok := textlayout.GetStyle(baseName)
	if !ok {
		return textlayout.Style{}, fmt.Errorf("style %s: unknown base style %q", name, baseName)
	}
	switch syn {
	case TOML:
		_, err = toml.Decode(string(data), &st)
	default:
		err = yaml.Unmarshal(data, &st)
	}
	if err != nil {
		return textlayout.Style{}, fmt.Errorf("decode style %s: %w", name, err)
	}
	if n, _ := raw["name"].(string); n == "" {
		st.Name = name
	}
	return st.Normalize(), nil
}

// LoadFile reads one style file. The style name defaults to the file name
// without extension.
func LoadFile(path string) (textlayout.Style, error) {
	syn, ok := SyntaxFor(path)
	if !ok {
		return textlayout.Style{}, fmt.Errorf("%s: not a style file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return textlayout.Style{}, fmt.Errorf("read style: %w", err)
	}
	st, err := Parse(data, syn, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if ie, ok := err.(*InvalidStyleError); ok {
		ie.Path = path
	}
	return st, err
}

// LoadDir loads every style file directly inside dir. A missing dir yields
// no styles. The first invalid file aborts loading.
func LoadDir(dir string) (map[string]textlayout.Style, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "load").With(slog.String("dir", dir))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]textlayout.Style{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read style dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := SyntaxFor(e.Name()); ok && !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make(map[string]textlayout.Style, len(names))
	for _, n := range names {
		st, err := LoadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		if _, dup := out[st.Name]; dup {
			l.Warn("duplicate style name, later file wins", slog.String("style", st.Name), slog.String("file", n))
		}
		out[st.Name] = st
	}
	l.Debug("styles loaded", slog.Int("count", len(out)))
	return out, nil
}

// Sheet returns the builtin styles extended with those in dir.
func Sheet(dir string) (*textlayout.StyleSheet, error) {
	sheet := textlayout.NewStyleSheet()
	if strings.TrimSpace(dir) == "" {
		return sheet, nil
	}
	user, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return sheet.WithUser(user), nil
}
