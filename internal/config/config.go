// Package config loads run configuration from YAML or INI files layered over
// embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalidConfig = errors.New("invalid config")

const (
	SelectionRouletteWheel = "roulette_wheel"
	SelectionTournament    = "tournament"

	CrossoverUniform     = "uniform"
	CrossoverSinglePoint = "single_point"
)

type Config struct {
	Run        RunConfig        `yaml:"run"`
	Population PopulationConfig `yaml:"population"`
	Network    NetworkConfig    `yaml:"network"`
	Selection  SelectionConfig  `yaml:"selection"`
	Crossover  CrossoverConfig  `yaml:"crossover"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Store      StoreConfig      `yaml:"store"`
	Output     OutputConfig     `yaml:"output"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type RunConfig struct {
	Scape       string `yaml:"scape" ini:"scape"`
	Seed        int64  `yaml:"seed" ini:"seed"`
	Generations int    `yaml:"generations" ini:"generations"`
	// Resume names a stored run whose last population seeds this one.
	Resume string `yaml:"resume" ini:"resume"`
}

type PopulationConfig struct {
	Size int `yaml:"size" ini:"size"`
}

type NetworkConfig struct {
	Hidden []int `yaml:"hidden" ini:"hidden" delim:","`
}

type SelectionConfig struct {
	Method         string `yaml:"method" ini:"method"`
	TournamentSize int    `yaml:"tournament_size" ini:"tournament_size"`
}

type CrossoverConfig struct {
	Method string `yaml:"method" ini:"method"`
}

type MutationConfig struct {
	Chance      float64 `yaml:"chance" ini:"chance"`
	Coefficient float64 `yaml:"coefficient" ini:"coefficient"`
}

type StoreConfig struct {
	Kind string `yaml:"kind" ini:"kind"`
	Path string `yaml:"path" ini:"path"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" ini:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" ini:"addr"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load overlays the file at path on top of the defaults. Files ending in
// .ini or .cfg are read as INI with one section per top-level key; anything
// else is YAML. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg":
		if err := cfg.overlayINI(path); err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct so only keys present in the file change.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

func (c *Config) overlayINI(path string) error {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", path, err)
	}

	sections := []struct {
		name   string
		target any
	}{
		{"run", &c.Run},
		{"population", &c.Population},
		{"network", &c.Network},
		{"selection", &c.Selection},
		{"crossover", &c.Crossover},
		{"mutation", &c.Mutation},
		{"store", &c.Store},
		{"output", &c.Output},
		{"metrics", &c.Metrics},
	}
	for _, s := range sections {
		if !file.HasSection(s.name) {
			continue
		}
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return nil
}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Run.Scape) == "" {
		fail("run.scape is required")
	}
	if c.Run.Generations < 0 {
		fail("run.generations must be >= 0, got %d", c.Run.Generations)
	}
	if c.Population.Size <= 0 {
		fail("population.size must be > 0, got %d", c.Population.Size)
	}
	for i, size := range c.Network.Hidden {
		if size <= 0 {
			fail("network.hidden[%d] must be > 0, got %d", i, size)
		}
	}
	switch c.Selection.Method {
	case SelectionRouletteWheel:
	case SelectionTournament:
		if c.Selection.TournamentSize < 1 {
			fail("selection.tournament_size must be >= 1, got %d", c.Selection.TournamentSize)
		}
	default:
		fail("unknown selection.method %q", c.Selection.Method)
	}
	switch c.Crossover.Method {
	case CrossoverUniform, CrossoverSinglePoint:
	default:
		fail("unknown crossover.method %q", c.Crossover.Method)
	}
	if !(c.Mutation.Chance >= 0 && c.Mutation.Chance <= 1) {
		fail("mutation.chance must be within [0, 1], got %v", c.Mutation.Chance)
	}
	if !(c.Mutation.Coefficient >= 0) {
		fail("mutation.coefficient must be >= 0, got %v", c.Mutation.Coefficient)
	}
	if c.Store.Kind == "sqlite" && c.Store.Path == "" {
		fail("store.path is required for sqlite")
	}
	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
