// Package config loads .giftlint.toml files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dhamidi/giftlint/format"
	"github.com/dhamidi/giftlint/recovery"
)

const FileName = ".giftlint.toml"

var (
	LineEndings = []string{"auto", "lf", "crlf", "cr"}
	ColorModes  = []string{"auto", "always", "never"}
)

type Config struct {
	IterationLimit int    `toml:"iteration_limit"`
	SearchRadius   int    `toml:"search_radius"`
	Workers        int    `toml:"workers"`
	LineEnding     string `toml:"line_ending"`
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	Wrap           int    `toml:"wrap"`

	Watch Watch `toml:"watch"`
	Serve Serve `toml:"serve"`
}

type Watch struct {
	IntervalMS int `toml:"interval_ms"`
}

type Serve struct {
	Addr string `toml:"addr"`
	// Store is "memory" or the path of a SQLite database.
	Store string `toml:"store"`
}

func Default() Config {
	return Config{
		IterationLimit: recovery.DefaultLimit,
		SearchRadius:   recovery.DefaultRadius,
		Workers:        runtime.NumCPU(),
		LineEnding:     "auto",
		Format:         format.Text,
		Color:          "auto",
		Wrap:           80,
		Watch:          Watch{IntervalMS: 500},
		Serve:          Serve{Addr: "localhost:8080", Store: "memory"},
	}
}

// Load reads the file at path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("loading %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("loading %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the path of the nearest config file in dir or one of its
// parents, or "" if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the nearest config file above dir, falling back to the
// defaults when there is none.
func Discover(dir string) (Config, string, error) {
	path, err := Find(dir)
	if err != nil || path == "" {
		return Default(), "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func (c Config) Validate() error {
	switch {
	case c.IterationLimit < 0:
		return fmt.Errorf("iteration_limit: must not be negative, got %d", c.IterationLimit)
	case c.SearchRadius < 0:
		return fmt.Errorf("search_radius: must not be negative, got %d", c.SearchRadius)
	case c.Workers < 0:
		return fmt.Errorf("workers: must not be negative, got %d", c.Workers)
	case c.Wrap < 0:
		return fmt.Errorf("wrap: must not be negative, got %d", c.Wrap)
	case c.Watch.IntervalMS <= 0:
		return fmt.Errorf("watch.interval_ms: must be positive, got %d", c.Watch.IntervalMS)
	}
	if err := oneOf("line_ending", c.LineEnding, LineEndings); err != nil {
		return err
	}
	if err := oneOf("format", c.Format, format.Names); err != nil {
		return err
	}
	return oneOf("color", c.Color, ColorModes)
}

func oneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: %q is not one of %s", key, value, strings.Join(allowed, ", "))
}

// Ending returns the line ending to compute offsets with, or "" to detect
// it per document.
func (c Config) Ending() string {
	switch c.LineEnding {
	case "lf":
		return "\n"
	case "crlf":
		return "\r\n"
	case "cr":
		return "\r"
	default:
		return ""
	}
}

func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalMS) * time.Millisecond
}
