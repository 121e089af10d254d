package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskdeck.db"
	DefaultLogName        = "taskdeck.log"
	DefaultView           = "today"

	envConfigPath = "TASKDECK_CONFIG"
	appDirName    = "taskdeck"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Add        string `toml:"add"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	Toggle     string `toml:"toggle"`
	Important  string `toml:"important"`
	Delete     string `toml:"delete"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
	Edit       string `toml:"edit"`
	Search     string `toml:"search"`
	NextView   string `toml:"next_view"`
	PrevView   string `toml:"prev_view"`
	Settings   string `toml:"settings"`
	Copy       string `toml:"copy"`
	Commit     string `toml:"commit"`
	NextField  string `toml:"next_field"`
	PrevField  string `toml:"prev_field"`
	NextMonth  string `toml:"next_month"`
	PrevMonth  string `toml:"prev_month"`
	HourUp     string `toml:"hour_up"`
	HourDown   string `toml:"hour_down"`
	MinuteUp   string `toml:"minute_up"`
	MinuteDown string `toml:"minute_down"`
	Period     string `toml:"period"`
}

type Config struct {
	DBPath      string `toml:"db_path"`
	DefaultView string `toml:"default_view"`
	LogPath     string `toml:"log_path"`
	LogLevel    string `toml:"log_level"`
	ProfileName string `toml:"profile_name"`
	Keys        Keymap `toml:"keys"`
}

// ResolveConfigPath returns $TASKDECK_CONFIG when set, otherwise
// config.toml under the user config directory.
func ResolveConfigPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if the file does not exist. Relative paths inside the file are resolved
// against the config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.DefaultView == "" {
		cfg.DefaultView = DefaultView
	}
	cfg.Keys = cfg.Keys.withDefaults(Default().Keys)
	return cfg.resolve(filepath.Dir(path)), nil
}

func (c Config) resolve(base string) Config {
	c.DBPath = resolvePath(base, c.DBPath)
	c.LogPath = resolvePath(base, c.LogPath)
	return c
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// withDefaults fills bindings missing from an older config file.
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
	fill(&k.Important, d.Important)
	fill(&k.Delete, d.Delete)
	fill(&k.Confirm, d.Confirm)
	fill(&k.Cancel, d.Cancel)
	fill(&k.Edit, d.Edit)
	fill(&k.Search, d.Search)
	fill(&k.NextView, d.NextView)
	fill(&k.PrevView, d.PrevView)
	fill(&k.Settings, d.Settings)
	fill(&k.Copy, d.Copy)
	fill(&k.Commit, d.Commit)
	fill(&k.NextField, d.NextField)
	fill(&k.PrevField, d.PrevField)
	fill(&k.NextMonth, d.NextMonth)
	fill(&k.PrevMonth, d.PrevMonth)
	fill(&k.HourUp, d.HourUp)
	fill(&k.HourDown, d.HourDown)
	fill(&k.MinuteUp, d.MinuteUp)
	fill(&k.MinuteDown, d.MinuteDown)
	fill(&k.Period, d.Period)
	return k
}

func Default() Config {
	return Config{
		DBPath:      DefaultDBName,
		DefaultView: DefaultView,
		LogPath:     DefaultLogName,
		LogLevel:    "info",
		ProfileName: os.Getenv("USER"),
		Keys: Keymap{
			Quit:       "q",
			Add:        "a",
			Up:         "k",
			Down:       "j",
			Toggle:     " ",
			Important:  "i",
			Delete:     "d",
			Confirm:    "enter",
			Cancel:     "esc",
			Edit:       "e",
			Search:     "/",
			NextView:   "tab",
			PrevView:   "shift+tab",
			Settings:   "s",
			Copy:       "y",
			Commit:     "ctrl+s",
			NextField:  "tab",
			PrevField:  "shift+tab",
			NextMonth:  "]",
			PrevMonth:  "[",
			HourUp:     "H",
			HourDown:   "h",
			MinuteUp:   "M",
			MinuteDown: "m",
			Period:     "p",
		},
	}
}
