package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log_level info, got %q", cfg.LogLevel)
	}
	if cfg.Notifications.Cap != 60 {
		t.Errorf("expected notifications.cap 60, got %d", cfg.Notifications.Cap)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults must validate: %v", err)
	}
}

func TestPollDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"", time.Minute},
		{"invalid", time.Minute},
		{"10ms", time.Minute},
	}
	for _, tt := range tests {
		cfg := &Config{Notifications: Notifications{PollInterval: tt.input}}
		if got := cfg.PollDuration(); got != tt.want {
			t.Errorf("PollDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNotificationCapDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.NotificationCap(); got != 60 {
		t.Errorf("expected default cap 60, got %d", got)
	}
	cfg.Notifications.Cap = 12
	if got := cfg.NotificationCap(); got != 12 {
		t.Errorf("expected cap 12, got %d", got)
	}
}

func TestPathsDefaultUnderXDG(t *testing.T) {
	cfg := &Config{}
	if !strings.HasSuffix(cfg.DBPath(), filepath.Join("factlet", "factlet.db")) {
		t.Errorf("unexpected db path %s", cfg.DBPath())
	}
	if !strings.HasSuffix(cfg.LogPath(), filepath.Join("factlet", "factlet.log")) {
		t.Errorf("unexpected log path %s", cfg.LogPath())
	}
	if cfg.CorpusPath() != "" {
		t.Errorf("expected built-in corpus, got %s", cfg.CorpusPath())
	}

	cfg.StorePath = "/tmp/shared.db"
	if cfg.DBPath() != "/tmp/shared.db" {
		t.Errorf("store_path override ignored: %s", cfg.DBPath())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `log_level: debug
notifications:
  cap: 10
  command: ["dunstify", "-u", "low"]
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %s", cfg.LogLevel)
	}
	if cfg.Notifications.Cap != 10 {
		t.Errorf("expected cap 10, got %d", cfg.Notifications.Cap)
	}
	if len(cfg.Notifications.Command) != 3 {
		t.Errorf("expected 3 command args, got %v", cfg.Notifications.Command)
	}
	// Unset keys keep their defaults
	if cfg.Notifications.PollInterval != "1m" {
		t.Errorf("expected default poll interval, got %q", cfg.Notifications.PollInterval)
	}
	if cfg.WidgetWidth() != 48 {
		t.Errorf("expected default widget width, got %d", cfg.WidgetWidth())
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notifications.Cap != 60 {
		t.Errorf("expected defaults when config doesn't exist, got cap %d", cfg.Notifications.Cap)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"cap too large", Config{Notifications: Notifications{Cap: 1000}}, true},
		{"negative cap", Config{Notifications: Notifications{Cap: -1}}, true},
		{"bad poll", Config{Notifications: Notifications{PollInterval: "soon"}}, true},
		{"poll too short", Config{Notifications: Notifications{PollInterval: "100ms"}}, true},
		{"empty command arg", Config{Notifications: Notifications{Command: []string{"notify", " "}}}, true},
		{"narrow widget", Config{Widget: Widget{Width: 5}}, true},
		{"missing corpus", Config{CorpusFile: "/does/not/exist.yaml"}, true},
		{"upper-case level", Config{LogLevel: "WARN"}, false},
	}
	for _, tt := range tests {
		err := validate(&tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
