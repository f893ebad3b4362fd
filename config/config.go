// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package config handles lox.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "lox.toml"

// Output formats
const (
	FormatBinary = "binary"
	FormatText   = "text"
)

// Config represents a lox.toml configuration.
type Config struct {
	Compiler Compiler `toml:"compiler"`
	Output   Output   `toml:"output"`
	Log      Log      `toml:"log"`

	// Dir is the directory containing the lox.toml file (set at load time).
	Dir string `toml:"-"`
}

// Compiler configures compiler output.
type Compiler struct {
	Trace       bool `toml:"trace"`
	Disassemble bool `toml:"disassemble"`
}

// Output configures where and how compiled scripts are written.
type Output struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

// Log configures logging of the command line tools.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when there is no lox.toml.
func Default() *Config {
	return &Config{
		Output: Output{Format: FormatBinary},
	}
}

// Load parses a lox.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return cfg, nil
}

// Parse parses lox.toml content and applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatBinary
	}
	switch cfg.Output.Format {
	case FormatBinary, FormatText:
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
	if cfg.Log.Verbosity < 0 {
		return nil, fmt.Errorf("negative log verbosity %d", cfg.Log.Verbosity)
	}
	return cfg, nil
}

// FindAndLoad walks up from startDir to find a lox.toml file, then loads and
// returns the configuration. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// OutputPath returns the configured output path relative to the directory of
// the configuration file, or "" if not set.
func (c *Config) OutputPath() string {
	if c.Output.Path == "" || filepath.IsAbs(c.Output.Path) || c.Dir == "" {
		return c.Output.Path
	}
	return filepath.Join(c.Dir, c.Output.Path)
}

// LogPath returns the configured log file path like OutputPath, or nil to
// log to stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	p := c.Log.File
	if !filepath.IsAbs(p) && c.Dir != "" {
		p = filepath.Join(c.Dir, p)
	}
	return &p
}
