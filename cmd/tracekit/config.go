package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// toolConfig is the optional tracekit.toml discovered upward from the
// working directory. It only supplies defaults; flags always win.
type toolConfig struct {
	Eval   evalConfig   `toml:"eval"`
	Output outputConfig `toml:"output"`
}

type evalConfig struct {
	Unit string `toml:"unit"`
}

type outputConfig struct {
	Dir string `toml:"dir"`
}

// findTracekitToml walks from startDir toward the filesystem root looking
// for the nearest tracekit.toml.
func findTracekitToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "tracekit.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadToolConfig decodes the nearest tracekit.toml, if one exists.
func loadToolConfig(startDir string) (toolConfig, bool, error) {
	path, ok, err := findTracekitToml(startDir)
	if err != nil || !ok {
		return toolConfig{}, false, err
	}
	var cfg toolConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return toolConfig{}, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, true, nil
}
