package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultTokenEnv names the environment variable holding the API token.
const DefaultTokenEnv = "LEVELSHELF_TOKEN"

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".config", "levelshelf", "config.yml")
}

// Path returns the config file in use: LEVELSHELF_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("LEVELSHELF_CONFIG"); p != "" {
		return p
	}
	return DefaultPath()
}

// Load reads the config from disk (or env). A missing file yields the
// defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEVELSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(Path())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Resolve token from env (never stored in file).
	tokenEnv := cfg.API.TokenEnv
	if tokenEnv == "" {
		tokenEnv = DefaultTokenEnv
	}
	cfg.API.Token = os.Getenv(tokenEnv)

	cfg.Library.LevelsDir = ExpandHome(cfg.Library.LevelsDir)
	cfg.Library.WorkshopDir = ExpandHome(cfg.Library.WorkshopDir)
	cfg.Library.StateDir = ExpandHome(cfg.Library.StateDir)
	cfg.Library.CacheDir = ExpandHome(cfg.Library.CacheDir)
	cfg.Log.File = ExpandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base", "https://levels.example.com")
	v.SetDefault("api.token_env", DefaultTokenEnv)
	v.SetDefault("library.levels_dir", dataDir("levels"))
	v.SetDefault("library.workshop_dir", dataDir("workshop"))
	v.SetDefault("library.state_dir", dataDir("state"))
	v.SetDefault("library.cache_dir", dataDir("cache"))
	v.SetDefault("library.naming", "id")
	v.SetDefault("browse.page_size", 12)
	v.SetDefault("browse.queue_page_size", 8)
	v.SetDefault("browse.columns", 4)
	v.SetDefault("browse.discard_stale_remote", false)
	v.SetDefault("icons.max_entries", 0)
	v.SetDefault("icons.size", 96)
	v.SetDefault("icons.workers", 4)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
}

// Save writes the config to Path().
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~ in a path.
func ExpandHome(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

func homeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		home, _ = os.UserHomeDir()
	}
	return home
}

func dataDir(sub string) string {
	return filepath.Join(homeDir(), ".local", "share", "levelshelf", sub)
}
