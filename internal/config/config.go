// Package config loads application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/lazycraft/internal/theme"
	"gopkg.in/yaml.v3"
)

// AppConfig defines the global lazycraft configuration options.
type AppConfig struct {
	CommitCount  int      `yaml:"commit_count"`   // history window size (default 20)
	Theme        string   `yaml:"theme"`          // see theme.AvailableThemes
	DebugLog     string   `yaml:"debug_log"`      // debug log file path
	ShowIcons    bool     `yaml:"show_icons"`     // Nerd Font icons in file lists
	GitPager     string   `yaml:"git_pager"`      // diff formatter, e.g. "delta"
	GitPagerArgs []string `yaml:"git_pager_args"` // extra arguments for the pager
}

// DefaultCommitCount is the history window size when neither flag nor config
// specifies one.
const DefaultCommitCount = 20

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		CommitCount: DefaultCommitCount,
		Theme:       theme.DraculaName,
		ShowIcons:   true,
		GitPager:    "delta",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lazycraft", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lazycraft", "config.yaml")
}

// LoadConfig reads the YAML config at path, falling back to DefaultPath when
// path is empty. A missing file yields the defaults without error.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.CommitCount <= 0 {
		cfg.CommitCount = DefaultCommitCount
	}
	cfg.Theme = strings.TrimSpace(cfg.Theme)
	if cfg.Theme == "" {
		cfg.Theme = theme.DraculaName
	}
	if theme.ByName(cfg.Theme) == nil {
		return cfg, fmt.Errorf("unknown theme %q in %s", cfg.Theme, path)
	}

	return cfg, nil
}
