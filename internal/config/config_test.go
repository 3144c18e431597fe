package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Broker.ChannelCapacity != 100 {
		t.Errorf("ChannelCapacity = %d, want 100", cfg.Broker.ChannelCapacity)
	}
	if cfg.Undo.EditDelay.Std() != time.Second {
		t.Errorf("EditDelay = %v, want 1s", cfg.Undo.EditDelay)
	}
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{
			name: "toml",
			file: "koru.toml",
			data: `
[log]
level = "debug"

[broker]
channel_capacity = 8

[undo]
edit_delay = "250ms"
store = "/tmp/undo.db"

[session]
tab_width = 2

[theme]
Accent = "#ff0000"
`,
		},
		{
			name: "yaml",
			file: "koru.yaml",
			data: `
log:
  level: debug
broker:
  channel_capacity: 8
undo:
  edit_delay: 250ms
  store: /tmp/undo.db
session:
  tab_width: 2
theme:
  Accent: "#ff0000"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.Decode(tt.file, []byte(tt.data)); err != nil {
				t.Fatal(err)
			}
			if cfg.Log.Level != "debug" {
				t.Errorf("Log.Level = %q", cfg.Log.Level)
			}
			if cfg.Broker.ChannelCapacity != 8 {
				t.Errorf("ChannelCapacity = %d", cfg.Broker.ChannelCapacity)
			}
			if cfg.Undo.EditDelay.Std() != 250*time.Millisecond {
				t.Errorf("EditDelay = %v", cfg.Undo.EditDelay)
			}
			if cfg.Undo.Store != "/tmp/undo.db" {
				t.Errorf("Store = %q", cfg.Undo.Store)
			}
			if cfg.Session.TabWidth != 2 {
				t.Errorf("TabWidth = %d", cfg.Session.TabWidth)
			}
			if cfg.Theme["Accent"] != "#ff0000" {
				t.Errorf("Theme = %v", cfg.Theme)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestDecodeKeepsUnsetDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Decode("koru.toml", []byte("[session]\ntab_width = 8\n")); err != nil {
		t.Fatal(err)
	}
	if cfg.Broker.ChannelCapacity != 100 || cfg.Undo.EditDelay.Std() != time.Second {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"unknown extension", "koru.ini", "x=1", ErrUnsupportedFormat},
		{"bad toml", "koru.toml", "[log\nlevel=", nil},
		{"unknown toml key", "koru.toml", "[log]\ncolour = 1\n", nil},
		{"bad yaml duration", "koru.yml", "undo:\n  edit_delay: soon\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().Decode(tt.file, []byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			var perr *ParseError
			if tt.want == nil && !errors.As(err, &perr) {
				t.Errorf("error = %T, want *ParseError", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"capacity", func(c *Config) { c.Broker.ChannelCapacity = 0 }, "broker.channel_capacity"},
		{"delay", func(c *Config) { c.Undo.EditDelay = Duration(-time.Second) }, "undo.edit_delay"},
		{"tab width", func(c *Config) { c.Session.TabWidth = 0 }, "session.tab_width"},
		{"palette name", func(c *Config) { c.Theme = map[string]string{"Nope": "#000000"} }, "theme.Nope"},
		{"palette colour", func(c *Config) { c.Theme = map[string]string{"Accent": "red"} }, "theme.Accent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Errorf("ValidationError = %+v, want path %s", verr, tt.path)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KORU_LOG_LEVEL":               "warn",
		"KORU_BROKER_CHANNEL_CAPACITY": "16",
		"KORU_UNDO_EDIT_DELAY":         "2s",
		"KORU_SESSION_INIT_SCRIPT":     "/etc/koru/init.lua",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" || cfg.Broker.ChannelCapacity != 16 ||
		cfg.Undo.EditDelay.Std() != 2*time.Second || cfg.Session.InitScript != "/etc/koru/init.lua" {
		t.Errorf("ApplyEnv() result = %+v", cfg)
	}

	env["KORU_SESSION_TAB_WIDTH"] = "wide"
	var perr *ParseError
	if err := cfg.ApplyEnv(lookup); !errors.As(err, &perr) || perr.Path != "KORU_SESSION_TAB_WIDTH" {
		t.Errorf("ApplyEnv() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "koru.toml")
	if err := os.WriteFile(path, []byte("[broker]\nchannel_capacity = 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KORU_SESSION_TAB_WIDTH", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Broker.ChannelCapacity != 42 || cfg.Session.TabWidth != 3 {
		t.Errorf("Load() = %+v", cfg)
	}

	cfg, err = Load(filepath.Join(dir, "missing.toml"))
	if err != nil || cfg.Broker.ChannelCapacity != 100 {
		t.Errorf("Load(missing) = %+v, %v", cfg, err)
	}
}

func TestPaletteOverlaysTheme(t *testing.T) {
	cfg := Default()
	cfg.Theme = map[string]string{"Accent": "#010203"}
	p := cfg.Palette()
	if p["Accent"] != "#010203" {
		t.Errorf("Palette()[Accent] = %q", p["Accent"])
	}
	if len(p) < 2 {
		t.Errorf("Palette() lost defaults: %v", p)
	}
}
