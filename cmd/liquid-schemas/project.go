package main

import (
	"errors"
	"path/filepath"

	"github.com/goliatone/go-liquid-schemas/internal/config"
)

// loadProject resolves the configuration for a command: an explicit
// --config file, else the first project file above --root (or the working
// directory), else defaults rooted at --root.
func loadProject(opts *globalOptions) (config.Config, error) {
	var cfg config.Config
	switch {
	case opts.configPath != "":
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	default:
		start := opts.root
		if start == "" {
			start = "."
		}
		path, err := config.Find(start)
		switch {
		case errors.Is(err, config.ErrNotFound):
			cfg = config.Default()
			cfg.Root = start
		case err != nil:
			return config.Config{}, err
		default:
			loaded, err := config.Load(path)
			if err != nil {
				return config.Config{}, err
			}
			cfg = loaded
		}
	}

	if opts.root != "" {
		root, err := filepath.Abs(opts.root)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Root = root
	}
	opts.log.V(1).Info("project loaded", "config", cfg.Path(), "root", cfg.Root)
	return cfg, cfg.Validate()
}
