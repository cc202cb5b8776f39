// Package config loads mvu settings from defaults, the user config file,
// a project .mvu.yaml, MVU_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/olivoil/mvu/internal/version"
)

// AppName names the config and data directories.
const AppName = version.AppName

// Config is the effective configuration.
type Config struct {
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`
	Fetch   FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Tail    TailConfig    `mapstructure:"tail" yaml:"tail"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`

	// Files lists the config files that were read, lowest precedence first.
	Files []string `mapstructure:"-" yaml:"-"`
}

// UIConfig controls the terminal.
type UIConfig struct {
	AltScreen   bool   `mapstructure:"alt_screen" yaml:"alt_screen"`
	Mouse       bool   `mapstructure:"mouse" yaml:"mouse"`
	NoColor     bool   `mapstructure:"no_color" yaml:"no_color"`
	Theme       string `mapstructure:"theme" yaml:"theme"`
	StartScreen string `mapstructure:"start_screen" yaml:"start_screen"`
}

// RuntimeConfig tunes the program loop.
type RuntimeConfig struct {
	// MaxCommands caps concurrently running commands; 0 means no cap.
	MaxCommands int `mapstructure:"max_commands" yaml:"max_commands"`
}

// FetchConfig lists what the fetch screen loads.
type FetchConfig struct {
	Sources []string      `mapstructure:"sources" yaml:"sources"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// TailConfig names the file the tail screen follows.
type TailConfig struct {
	Path    string `mapstructure:"path" yaml:"path"`
	Backlog int    `mapstructure:"backlog" yaml:"backlog"`
}

// LogConfig controls the debug log. An empty File discards logs.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// JournalConfig controls the flight recorder.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"screen":     "ui.start_screen",
	"alt-screen": "ui.alt_screen",
	"mouse":      "ui.mouse",
	"no-color":   "ui.no_color",
	"theme":      "ui.theme",
	"record":     "journal.enabled",
	"log-file":   "log.file",
	"log-level":  "log.level",
}

// Load reads the configuration. With path set only that file is read,
// otherwise the user file and the nearest project file are merged. flags
// may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var files []string
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
		files = append(files, path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(UserConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading user config: %w", err)
			}
		} else {
			files = append(files, v.ConfigFileUsed())
		}

		if project := ProjectConfigPath(); project != "" {
			pv := viper.New()
			pv.SetConfigFile(project)
			if err := pv.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading project config %s: %w", project, err)
			}
			if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
			files = append(files, project)
		}
	}

	v.SetEnvPrefix("MVU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Files = files

	// https://no-color.org: any non-empty value disables color
	if os.Getenv("NO_COLOR") != "" {
		cfg.UI.NoColor = true
	}
	cfg.UI.Theme = expandHome(cfg.UI.Theme)
	cfg.Tail.Path = expandHome(cfg.Tail.Path)
	cfg.Log.File = expandHome(cfg.Log.File)
	cfg.Journal.Path = expandHome(cfg.Journal.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Runtime.MaxCommands < 0 {
		errs = append(errs, fmt.Errorf("runtime.max_commands must not be negative, got %d", c.Runtime.MaxCommands))
	}
	if c.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must not be negative, got %s", c.Fetch.Timeout))
	}
	if c.Tail.Backlog < 0 {
		errs = append(errs, fmt.Errorf("tail.backlog must not be negative, got %d", c.Tail.Backlog))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required when the journal is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel converts a log.level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: unknown level %q", s)
	}
	return l, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("ui.mouse", true)
	v.SetDefault("ui.no_color", false)
	v.SetDefault("ui.theme", "")
	v.SetDefault("ui.start_screen", "menu")

	v.SetDefault("runtime.max_commands", 16)

	v.SetDefault("fetch.sources", []string{})
	v.SetDefault("fetch.timeout", "10s")

	v.SetDefault("tail.path", "")
	v.SetDefault("tail.backlog", 200)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", filepath.Join(DataDir(), "journal.db"))
}

// UserConfigPath returns the user config file path.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// UserConfigDir returns $XDG_CONFIG_HOME/mvu, or ~/.config/mvu.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DataDir returns $XDG_DATA_HOME/mvu, or ~/.local/share/mvu.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// ProjectConfigPath returns the nearest .mvu.yaml from the working
// directory upwards, or "".
func ProjectConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, "."+AppName+".yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
