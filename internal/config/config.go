/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "nashchart/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type RenderConfig struct {
	Style  string `yaml:"style"`
	Key    string `yaml:"key"`
	Format string `yaml:"format"` // png | pdf | svg | txt
	DPI    int    `yaml:"dpi"`
	// Optional TTF files replacing the bundled Go fonts.
	ChordFont string `yaml:"chord_font"`
	TextFont  string `yaml:"text_font"`
}

type QuizConfig struct {
	Seed         int64  `yaml:"seed"` // 0 derives the seed from the clock
	Degrees      string `yaml:"degrees"`
	Keys         string `yaml:"keys"`
	ChordsPerRow int    `yaml:"chords_per_row"`
	SlashChords  bool   `yaml:"slash_chords"`
}

type CacheConfig struct {
	Dir      string `yaml:"dir"`
	Disabled bool   `yaml:"disabled"`
}

type StylesConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Render        RenderConfig  `yaml:"render"`
	Quiz          QuizConfig    `yaml:"quiz"`
	Cache         CacheConfig   `yaml:"cache"`
	Styles        StylesConfig  `yaml:"styles"`
	Logging       LoggingConfig `yaml:"logging"`
}

const currentVersion = 1

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: currentVersion,
		Render:        RenderConfig{Style: "compact", Format: "png", DPI: 300},
		Quiz: QuizConfig{
			Degrees:      "4 5 6 2 7 3 1",
			Keys:         "e-flat g f d b-flat",
			ChordsPerRow: 12,
			SlashChords:  true,
		},
		Cache:   CacheConfig{Dir: defaultCacheDir()},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvStyle    = "NASH_STYLE"
	EnvKey      = "NASH_KEY"
	EnvFormat   = "NASH_FORMAT"
	EnvSeed     = "NASH_SEED"
	EnvCacheDir = "NASH_CACHE_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "NASH_LOG_LEVEL"
	EnvLogFormat = "NASH_LOG_FORMAT"
	EnvLogSource = "NASH_LOG_SOURCE"
	EnvLogFile   = "NASH_LOG_FILE"
)

var formats = []string{"png", "pdf", "svg", "txt"}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "NashChart")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "NashChart")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "nashchart")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

func defaultCacheDir() string {
	if d, err := os.UserCacheDir(); err == nil {
		return filepath.Join(d, "nashchart")
	}
	return filepath.Join(os.TempDir(), "nashchart-cache")
}

// Load reads the config file at path (the per-user path when empty) on top
// of the defaults, then applies environment overrides. A missing file is
// not an error.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if cfg.ConfigVersion > currentVersion {
		return cfg, fmt.Errorf("config %s has version %d, newer than supported %d", path, cfg.ConfigVersion, currentVersion)
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes cfg as YAML to path (the per-user path when empty).
func Save(cfg AppConfig, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func normalize(cfg *AppConfig) {
	lower := func(s *string) { *s = strings.ToLower(strings.TrimSpace(*s)) }
	lower(&cfg.Render.Format)
	lower(&cfg.Render.Key)
	lower(&cfg.Logging.Level)
	lower(&cfg.Logging.Format)
	cfg.Render.Style = strings.TrimSpace(cfg.Render.Style)
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = Defaults().Render.DPI
	}
	if cfg.Quiz.ChordsPerRow == 0 {
		cfg.Quiz.ChordsPerRow = Defaults().Quiz.ChordsPerRow
	}
	if strings.TrimSpace(cfg.Cache.Dir) == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvStyle)); v != "" {
		cfg.Render.Style = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvKey)); v != "" {
		cfg.Render.Key = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		cfg.Render.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSeed)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Quiz.Seed = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		cfg.Cache.Dir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// Validate reports the first setting outside its allowed range.
func (c AppConfig) Validate() error {
	ok := false
	for _, f := range formats {
		ok = ok || c.Render.Format == f
	}
	if !ok {
		return fmt.Errorf("render.format %q: want one of %s", c.Render.Format, strings.Join(formats, ", "))
	}
	if c.Render.DPI < 0 {
		return fmt.Errorf("render.dpi %d must be positive", c.Render.DPI)
	}
	if c.Quiz.ChordsPerRow < 0 {
		return fmt.Errorf("quiz.chords_per_row %d must be positive", c.Quiz.ChordsPerRow)
	}
	return nil
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"render.style":   EnvStyle,
		"render.key":     EnvKey,
		"render.format":  EnvFormat,
		"quiz.seed":      EnvSeed,
		"cache.dir":      EnvCacheDir,
		"logging.level":  EnvLogLevel,
		"logging.format": EnvLogFormat,
		"logging.source": EnvLogSource,
		"logging.file":   EnvLogFile,
	}
	if env, ok := names[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// GlyphCacheDir returns the glyph cache directory, or "" when caching to
// disk is disabled.
func (c AppConfig) GlyphCacheDir() string {
	if c.Cache.Disabled {
		return ""
	}
	return filepath.Join(c.Cache.Dir, "glyphs")
}
