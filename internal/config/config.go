package config

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/koru-editor/koru/internal/broker"
	"github.com/koru-editor/koru/internal/logging"
	"github.com/koru-editor/koru/internal/styled"
)

// Config holds every editor setting.
type Config struct {
	Log     LogConfig         `toml:"log" yaml:"log"`
	Broker  BrokerConfig      `toml:"broker" yaml:"broker"`
	Undo    UndoConfig        `toml:"undo" yaml:"undo"`
	Session SessionConfig     `toml:"session" yaml:"session"`
	Theme   map[string]string `toml:"theme" yaml:"theme"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// File receives log output. Empty means stderr.
	File string `toml:"file" yaml:"file"`
}

// BrokerConfig configures message routing.
type BrokerConfig struct {
	// ChannelCapacity bounds every client inbox and the broker's own.
	ChannelCapacity int `toml:"channel_capacity" yaml:"channel_capacity"`
}

// UndoConfig configures undo history.
type UndoConfig struct {
	// EditDelay is how long consecutive edits keep coalescing.
	EditDelay Duration `toml:"edit_delay" yaml:"edit_delay"`
	// Store is the bbolt file for persistent undo. Empty disables it.
	Store string `toml:"store" yaml:"store"`
}

// SessionConfig configures editing sessions.
type SessionConfig struct {
	// InitScript is a Lua file run when a session starts.
	InitScript string `toml:"init_script" yaml:"init_script"`
	// TabWidth is sent to frontends as a UI attribute.
	TabWidth int `toml:"tab_width" yaml:"tab_width"`
}

var knownLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: logging.LevelInfo.String()},
		Broker:  BrokerConfig{ChannelCapacity: broker.DefaultCapacity},
		Undo:    UndoConfig{EditDelay: Duration(time.Second)},
		Session: SessionConfig{TabWidth: 4},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if !knownLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level})
	}
	if c.Broker.ChannelCapacity <= 0 {
		errs = append(errs, &ValidationError{Path: "broker.channel_capacity", Message: "must be positive", Value: c.Broker.ChannelCapacity})
	}
	if c.Undo.EditDelay < 0 {
		errs = append(errs, &ValidationError{Path: "undo.edit_delay", Message: "must not be negative", Value: c.Undo.EditDelay})
	}
	if c.Session.TabWidth <= 0 {
		errs = append(errs, &ValidationError{Path: "session.tab_width", Message: "must be positive", Value: c.Session.TabWidth})
	}
	for name, hex := range c.Theme {
		if _, err := styled.ParseColorType(name); err != nil {
			errs = append(errs, &ValidationError{Path: "theme." + name, Message: "unknown palette name", Value: name})
			continue
		}
		if _, err := styled.ParseColor(hex); err != nil {
			errs = append(errs, &ValidationError{Path: "theme." + name, Message: "invalid colour", Value: hex})
		}
	}
	return errors.Join(errs...)
}

// Palette returns the default palette with the configured theme applied.
func (c *Config) Palette() map[string]string {
	palette := maps.Clone(styled.DefaultPalette)
	maps.Copy(palette, c.Theme)
	return palette
}

// Duration is a time.Duration written as a string such as "1s" or "250ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
