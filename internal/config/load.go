package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "KORU_"

// Load builds a Config from defaults, the file at path and the process
// environment, then validates it. An empty path or a missing file leaves
// the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.Decode(path, data)
}

// Decode merges data over c. The format is picked from name's extension.
func (c *Config) Decode(name string, data []byte) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			perr := &ParseError{Path: name, Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: name, Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return nil
}

// envSetters maps each override variable to the field it sets.
func (c *Config) envSetters() map[string]func(string) error {
	setInt := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	setString := func(dst *string) func(string) error {
		return func(v string) error {
			*dst = v
			return nil
		}
	}

	return map[string]func(string) error{
		EnvPrefix + "LOG_LEVEL":               setString(&c.Log.Level),
		EnvPrefix + "LOG_FILE":                setString(&c.Log.File),
		EnvPrefix + "BROKER_CHANNEL_CAPACITY": setInt(&c.Broker.ChannelCapacity),
		EnvPrefix + "UNDO_EDIT_DELAY":         func(v string) error { return c.Undo.EditDelay.UnmarshalText([]byte(v)) },
		EnvPrefix + "UNDO_STORE":              setString(&c.Undo.Store),
		EnvPrefix + "SESSION_INIT_SCRIPT":     setString(&c.Session.InitScript),
		EnvPrefix + "SESSION_TAB_WIDTH":       setInt(&c.Session.TabWidth),
	}
}

// ApplyEnv overrides settings from variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	for name, set := range c.envSetters() {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(v); err != nil {
			errs = append(errs, &ParseError{Path: name, Err: err})
		}
	}
	return errors.Join(errs...)
}
