// Package config loads the command configuration from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/uicore/cache"
)

// Format is a configuration file syntax.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ErrUnknownFormat is returned for files whose extension is not one of
// .yaml, .yml or .toml.
var ErrUnknownFormat = errors.New("config: unknown file format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Config is the file layout shared by the commands.
type Config struct {
	Cache   Cache   `yaml:"cache" toml:"cache"`
	Bench   Bench   `yaml:"bench" toml:"bench"`
	Metrics Metrics `yaml:"metrics" toml:"metrics"`
	Log     Log     `yaml:"log" toml:"log"`
}

// Cache sizes the glyph cache.
type Cache struct {
	Capacity int    `yaml:"capacity" toml:"capacity"`
	Shards   int    `yaml:"shards" toml:"shards"`
	MaxCost  int64  `yaml:"max_cost" toml:"max_cost"`
	MaxAge   uint32 `yaml:"max_age" toml:"max_age"`
	Policy   string `yaml:"policy" toml:"policy"`
}

// Bench describes the synthetic frame workload of cmd/bench.
type Bench struct {
	Frames         int    `yaml:"frames" toml:"frames"`
	GlyphsPerFrame int    `yaml:"glyphs_per_frame" toml:"glyphs_per_frame"`
	Alphabet       string `yaml:"alphabet" toml:"alphabet"`
	Workers        int    `yaml:"workers" toml:"workers"`
	Seed           int64  `yaml:"seed" toml:"seed"`
}

// Metrics configures the HTTP endpoints. Empty addresses disable them.
type Metrics struct {
	Addr  string `yaml:"addr" toml:"addr"`
	Pprof string `yaml:"pprof" toml:"pprof"`
}

// Log configures the slog handler.
type Log struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used for absent keys.
func Default() Config {
	return Config{
		Cache: Cache{
			Capacity: 4096,
			MaxAge:   64,
			Policy:   "age",
		},
		Bench: Bench{
			Frames:         600,
			GlyphsPerFrame: 2000,
			Alphabet:       "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 .,:;!?()[]{}+-*/=<>'\"",
			Workers:        4,
			Seed:           1,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeFile decodes a YAML or TOML file into v, rejecting unknown keys
// when v is a struct.
func DecodeFile(path string, v any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := Decode(data, f, v); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Decode decodes data in format f into v. Empty input leaves v unchanged.
func Decode(data []byte, f Format, v any) error {
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be > 0, got %d", c.Cache.Capacity))
	}
	if c.Cache.Shards < 0 {
		errs = append(errs, fmt.Errorf("cache.shards must be >= 0, got %d", c.Cache.Shards))
	}
	if c.Cache.MaxCost < 0 {
		errs = append(errs, fmt.Errorf("cache.max_cost must be >= 0, got %d", c.Cache.MaxCost))
	}
	if _, err := cache.PolicyNamed(c.Cache.Policy, c.Cache.MaxAge); err != nil {
		errs = append(errs, err)
	}
	if c.Bench.Frames < 0 || c.Bench.GlyphsPerFrame < 0 || c.Bench.Workers < 0 {
		errs = append(errs, errors.New("bench counts must not be negative"))
	}
	if c.Bench.Alphabet == "" {
		errs = append(errs, errors.New("bench.alphabet must not be empty"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps debug, info, warn and error (any case) to slog levels.
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	l, err := ParseLevel(c.Log.Level)
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
