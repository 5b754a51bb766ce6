package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "dayboard"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultLogName        = "dayboard.log"
	DefaultTimezone       = "UTC"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "DAYBOARD_CONFIG"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Fold        string `toml:"fold"`
	ExpandAll   string `toml:"expand_all"`
	CollapseAll string `toml:"collapse_all"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	NextField   string `toml:"next_field"`
	Submit      string `toml:"submit"`
}

type Config struct {
	Backend      string `toml:"backend"`
	DBPath       string `toml:"db_path"`
	Timezone     string `toml:"timezone"`
	ExpandLatest bool   `toml:"expand_latest"`
	LogPath      string `toml:"log_path"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	Keys         Keymap `toml:"keys"`
}

// ResolveConfigPath picks the config file: $DAYBOARD_CONFIG, then the user
// config dir, then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	cfg.Keys = cfg.Keys.withDefaults(defaultConfig().Keys)
	return cfg.resolve(path), nil
}

// Location returns the zone tasks are grouped by calendar day in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// resolve anchors relative data paths next to the config file.
func (c Config) resolve(configPath string) Config {
	dir := filepath.Dir(configPath)
	if c.DBPath != "" && !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if c.LogPath != "" && !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
	return c
}

func (k Keymap) withDefaults(d Keymap) Keymap {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&k.Quit, d.Quit)
	fill(&k.Add, d.Add)
	fill(&k.Up, d.Up)
	fill(&k.Down, d.Down)
	fill(&k.Toggle, d.Toggle)
	fill(&k.Delete, d.Delete)
	fill(&k.Fold, d.Fold)
	fill(&k.ExpandAll, d.ExpandAll)
	fill(&k.CollapseAll, d.CollapseAll)
	fill(&k.Confirm, d.Confirm)
	fill(&k.Cancel, d.Cancel)
	fill(&k.NextField, d.NextField)
	fill(&k.Submit, d.Submit)
	return k
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Backend:      "sqlite",
		DBPath:       DefaultDBName,
		Timezone:     DefaultTimezone,
		ExpandLatest: true,
		LogPath:      DefaultLogName,
		LogLevel:     "info",
		LogFormat:    "text",
		Keys: Keymap{
			Quit:        "q",
			Add:         "a",
			Up:          "k",
			Down:        "j",
			Toggle:      " ",
			Delete:      "d",
			Fold:        "enter",
			ExpandAll:   "E",
			CollapseAll: "C",
			Confirm:     "enter",
			Cancel:      "esc",
			NextField:   "tab",
			Submit:      "ctrl+s",
		},
	}
}
