package config

import (
	"fmt"
	"strings"
)

// Config is the top-level levelshelf configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Library LibraryConfig `mapstructure:"library" yaml:"library"`
	Browse  BrowseConfig  `mapstructure:"browse" yaml:"browse"`
	Icons   IconsConfig   `mapstructure:"icons" yaml:"icons"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// APIConfig holds level service connection settings.
type APIConfig struct {
	Base     string `mapstructure:"base" yaml:"base"`
	TokenEnv string `mapstructure:"token_env" yaml:"token_env"`
	Token    string `mapstructure:"-" yaml:"-"` // resolved at runtime, never written
}

// LibraryConfig holds on-disk locations.
type LibraryConfig struct {
	LevelsDir   string `mapstructure:"levels_dir" yaml:"levels_dir"`
	WorkshopDir string `mapstructure:"workshop_dir" yaml:"workshop_dir"`
	StateDir    string `mapstructure:"state_dir" yaml:"state_dir"`
	CacheDir    string `mapstructure:"cache_dir" yaml:"cache_dir"`
	Naming      string `mapstructure:"naming" yaml:"naming"` // "id" or "default"
}

// BrowseConfig holds browser layout settings.
type BrowseConfig struct {
	PageSize           int  `mapstructure:"page_size" yaml:"page_size"`
	QueuePageSize      int  `mapstructure:"queue_page_size" yaml:"queue_page_size"`
	Columns            int  `mapstructure:"columns" yaml:"columns"`
	DiscardStaleRemote bool `mapstructure:"discard_stale_remote" yaml:"discard_stale_remote"`
}

// IconsConfig holds cover thumbnail settings.
type IconsConfig struct {
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"` // 0 = unbounded
	Size       int `mapstructure:"size" yaml:"size"`
	Workers    int `mapstructure:"workers" yaml:"workers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File, when set, receives TUI session logs.
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	var problems []string
	switch strings.ToLower(c.Library.Naming) {
	case "", "id", "default":
	default:
		problems = append(problems, fmt.Sprintf("library.naming %q must be id or default", c.Library.Naming))
	}
	if c.Browse.PageSize <= 0 {
		problems = append(problems, "browse.page_size must be positive")
	}
	if c.Browse.QueuePageSize <= 0 {
		problems = append(problems, "browse.queue_page_size must be positive")
	}
	if c.Browse.Columns <= 0 {
		problems = append(problems, "browse.columns must be positive")
	}
	if c.Icons.MaxEntries < 0 {
		problems = append(problems, "icons.max_entries must not be negative")
	}
	if c.Library.LevelsDir == "" {
		problems = append(problems, "library.levels_dir is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
