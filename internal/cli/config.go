package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	glob "github.com/Sriram-PR/go-glob"
)

// fileConfig is the YAML form of the default options, e.g.
//
//	ignore:
//	  - "**/node_modules/**"
//	dot: true
//	deep: 3
type fileConfig struct {
	Ignore          []string `yaml:"ignore"`
	IgnoreFiles     []string `yaml:"ignore_files"`
	Dot             bool     `yaml:"dot"`
	Absolute        bool     `yaml:"absolute"`
	Deep            *int     `yaml:"deep"`
	OnlyDirectories bool     `yaml:"only_directories"`
	OnlyFiles       bool     `yaml:"only_files"`
	CaseInsensitive bool     `yaml:"case_insensitive"`
	Strict          bool     `yaml:"strict"`
	Cwd             string   `yaml:"cwd"`
	Concurrency     int      `yaml:"concurrency"`
}

// loadConfig reads a YAML options file. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()

	var cfg fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Deep != nil && *cfg.Deep < 0 {
		cfg.Deep = nil
	}

	for _, p := range cfg.IgnoreFiles {
		patterns, err := glob.ReadPatternFile(p)
		if err != nil {
			return nil, err
		}
		cfg.Ignore = append(cfg.Ignore, patterns...)
	}

	return &cfg, nil
}

func (c *fileConfig) options() glob.Options {
	return glob.Options{
		Ignore:          c.Ignore,
		Dot:             c.Dot,
		Absolute:        c.Absolute,
		Deep:            c.Deep,
		OnlyDirectories: c.OnlyDirectories,
		OnlyFiles:       c.OnlyFiles,
		CaseInsensitive: c.CaseInsensitive,
		Strict:          c.Strict,
		Cwd:             c.Cwd,
		Concurrency:     c.Concurrency,
	}
}
