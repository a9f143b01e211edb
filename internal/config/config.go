package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "factlet"

type Notifications struct {
	Cap          int      `yaml:"cap"`
	PollInterval string   `yaml:"poll_interval"`
	Command      []string `yaml:"command,omitempty"`
}

type Widget struct {
	Width int `yaml:"width"`
}

type Config struct {
	StorePath     string        `yaml:"store_path,omitempty"`
	CorpusFile    string        `yaml:"corpus_file,omitempty"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file,omitempty"`
	Notifications Notifications `yaml:"notifications"`
	Widget        Widget        `yaml:"widget"`
}

// DBPath returns the shared store location, defaulting to the XDG data dir.
func (c *Config) DBPath() string {
	if c.StorePath != "" {
		return expandHome(c.StorePath)
	}
	return filepath.Join(xdg.DataHome, appName, appName+".db")
}

func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return expandHome(c.LogFile)
	}
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// CorpusPath is "" when the built-in corpus should be used.
func (c *Config) CorpusPath() string {
	if c.CorpusFile == "" {
		return ""
	}
	return expandHome(c.CorpusFile)
}

func (c *Config) PollDuration() time.Duration {
	d, err := time.ParseDuration(c.Notifications.PollInterval)
	if err != nil || d < time.Second {
		return time.Minute
	}
	return d
}

// NotificationCap returns the scheduling cap, defaulting to 60.
func (c *Config) NotificationCap() int {
	if c.Notifications.Cap <= 0 {
		return 60
	}
	return c.Notifications.Cap
}

func (c *Config) WidgetWidth() int {
	if c.Widget.Width <= 0 {
		return 48
	}
	return c.Widget.Width
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path over the embedded defaults. A missing file
// is created from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("log_level: unknown level %q (valid: debug, info, warn, error)", cfg.LogLevel)
	}
	if cfg.Notifications.Cap < 0 || cfg.Notifications.Cap > 500 {
		return fmt.Errorf("notifications.cap: must be between 1 and 500, got %d", cfg.Notifications.Cap)
	}
	if s := cfg.Notifications.PollInterval; s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("notifications.poll_interval: %w", err)
		}
		if d < time.Second {
			return fmt.Errorf("notifications.poll_interval: must be at least 1s, got %s", d)
		}
	}
	for i, arg := range cfg.Notifications.Command {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("notifications.command: argument %d is empty", i)
		}
	}
	if cfg.Widget.Width != 0 && cfg.Widget.Width < 20 {
		return fmt.Errorf("widget.width: must be at least 20, got %d", cfg.Widget.Width)
	}
	if cfg.CorpusFile != "" {
		if _, err := os.Stat(expandHome(cfg.CorpusFile)); err != nil {
			return fmt.Errorf("corpus_file: %w", err)
		}
	}
	return nil
}
