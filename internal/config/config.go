// Package config loads liquid-schemas project files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are searched, in order, in every directory from the start
// directory up to the filesystem root.
var FileNames = []string{
	"liquid-schemas.yaml",
	"liquid-schemas.yml",
	"liquid-schemas.json",
	"liquid-schemas.toml",
}

const (
	DefaultSections    = "sections/*.liquid"
	DefaultConcurrency = 8
	DefaultCache       = ".liquid-schemas.cache"
	DefaultHTTPTimeout = 10 * time.Second
)

// ErrNotFound reports that no project file exists above the start directory.
var ErrNotFound = errors.New("config: no liquid-schemas project file found")

// Config mirrors the project file.
type Config struct {
	Root           string            `yaml:"root,omitempty" toml:"root"`
	Sections       []string          `yaml:"sections,omitempty" toml:"sections"`
	Output         string            `yaml:"output,omitempty" toml:"output"`
	Aliases        map[string]string `yaml:"aliases,omitempty" toml:"aliases"`
	ModuleRoots    []string          `yaml:"moduleRoots,omitempty" toml:"moduleRoots"`
	Indent         *string           `yaml:"indent,omitempty" toml:"indent"`
	Sanitize       bool              `yaml:"sanitize,omitempty" toml:"sanitize"`
	SanitizeFields []string          `yaml:"sanitizeFields,omitempty" toml:"sanitizeFields"`
	Concurrency    int               `yaml:"concurrency,omitempty" toml:"concurrency"`
	Globals        map[string]any    `yaml:"globals,omitempty" toml:"globals"`
	Settings       Settings          `yaml:"settings,omitempty" toml:"settings"`
	HTTP           HTTP              `yaml:"http,omitempty" toml:"http"`
	Cache          string            `yaml:"cache,omitempty" toml:"cache"`

	path string
}

// Settings configures the theme settings schema target.
type Settings struct {
	Input  string `yaml:"input,omitempty" toml:"input"`
	Output string `yaml:"output,omitempty" toml:"output"`
}

// HTTP configures remote schema modules.
type HTTP struct {
	Enabled bool     `yaml:"enabled,omitempty" toml:"enabled"`
	Timeout Duration `yaml:"timeout,omitempty" toml:"timeout"`
}

// Duration accepts Go duration strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns a configuration with defaults applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Find walks from start towards the filesystem root and returns the first
// project file.
func Find(start string) (string, error) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("config: stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads, defaults and validates the project file at path. A relative
// root is resolved against the directory holding the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg.path = path
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a project file. ext selects TOML for ".toml"; every other
// extension is read as YAML, which also covers JSON documents.
func Parse(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("unknown field %q", undecoded[0].String())
		}
	default:
		if len(bytes.TrimSpace(data)) > 0 {
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(&cfg); err != nil {
				return Config{}, err
			}
		}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Root) == "" {
		c.Root = "."
	}
	if len(c.Sections) == 0 {
		c.Sections = []string{DefaultSections}
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Cache == "" {
		c.Cache = DefaultCache
	}
	if c.HTTP.Timeout.Duration == 0 {
		c.HTTP.Timeout.Duration = DefaultHTTPTimeout
	}
	c.Output = normalizeSlash(c.Output)
	c.Settings.Input = normalizeSlash(c.Settings.Input)
	c.Settings.Output = normalizeSlash(c.Settings.Output)
	for i, root := range c.ModuleRoots {
		c.ModuleRoots[i] = normalizeSlash(root)
	}
}

// Validate reports configuration mistakes.
func (c Config) Validate() error {
	var problems []string
	for _, pattern := range c.Sections {
		if strings.TrimSpace(pattern) == "" {
			problems = append(problems, "sections must not contain empty patterns")
			break
		}
	}
	if c.Concurrency < 0 {
		problems = append(problems, "concurrency must be positive")
	}
	if c.HTTP.Timeout.Duration < 0 {
		problems = append(problems, "http.timeout must be positive")
	}
	for prefix := range c.Aliases {
		if strings.TrimSpace(prefix) == "" {
			problems = append(problems, "aliases must not use an empty prefix")
			break
		}
	}
	if escapes(c.Output) {
		problems = append(problems, "output must stay inside the root")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
}

// Path returns the file the configuration was loaded from.
func (c Config) Path() string {
	return c.path
}

// CachePath returns the cache file location on disk.
func (c Config) CachePath() string {
	if filepath.IsAbs(c.Cache) {
		return c.Cache
	}
	return filepath.Join(c.Root, filepath.FromSlash(c.Cache))
}

func normalizeSlash(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
}

func escapes(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/")
}
