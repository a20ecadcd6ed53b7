package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads settings from path on top of the defaults. A missing file is
// not an error; the defaults are returned.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	format, err := FormatFor(path)
	if err != nil {
		return s, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil // File doesn't exist, not an error
		}
		return s, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := decode(path, format, data, &s); err != nil {
		return Default(), err
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// LoadFromReader reads settings in the given format on top of the defaults.
func LoadFromReader(r io.Reader, format Format) (Settings, error) {
	s := Default()
	data, err := io.ReadAll(r)
	if err != nil {
		return s, fmt.Errorf("reading config: %w", err)
	}
	if err := decode("<reader>", format, data, &s); err != nil {
		return Default(), err
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

func decode(source string, format Format, data []byte, s *Settings) error {
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, s); err != nil {
			pe := &ParseError{Path: source, Message: err.Error(), Err: err}
			var decErr *toml.DecodeError
			if errors.As(err, &decErr) {
				pe.Line, pe.Column = decErr.Position()
			}
			return pe
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, s); err != nil {
			return &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
	}
	return nil
}

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "QUILL_"

// envSetters maps override variables, without the prefix, to settings.
var envSetters = map[string]func(*Settings, string) error{
	"LOG_LEVEL":             func(s *Settings, v string) error { s.Log.Level = v; return nil },
	"TAB_TEXT":              func(s *Settings, v string) error { s.Editor.TabText = v; return nil },
	"LINE_ENDING":           func(s *Settings, v string) error { s.Editor.LineEnding = v; return nil },
	"PAGE_ROWS":             intSetter(func(s *Settings) *int { return &s.Editor.PageRows }),
	"HISTORY_MAX_SIZE":      intSetter(func(s *Settings) *int { return &s.History.MaxSize }),
	"SEARCH_LIMIT":          intSetter(func(s *Settings) *int { return &s.Search.Limit }),
	"SEARCH_WORKERS":        intSetter(func(s *Settings) *int { return &s.Search.Workers }),
	"SEARCH_CASE_SENSITIVE": boolSetter(func(s *Settings) *bool { return &s.Search.CaseSensitive }),
	"WRAP_ENABLED":          boolSetter(func(s *Settings) *bool { return &s.Wrap.Enabled }),
	"WRAP_COLUMN":           intSetter(func(s *Settings) *int { return &s.Wrap.Column }),
}

func intSetter(field func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(s) = n
		return nil
	}
}

func boolSetter(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		switch strings.ToLower(v) {
		case "true", "yes", "on", "1":
			*field(s) = true
		case "false", "no", "off", "0":
			*field(s) = false
		default:
			return fmt.Errorf("not a boolean: %q", v)
		}
		return nil
	}
}

// ApplyEnv overrides settings from QUILL_* variables found through lookup,
// usually os.LookupEnv. Empty values are treated as set.
func ApplyEnv(s *Settings, lookup func(string) (string, bool)) error {
	for name, set := range envSetters {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(s, v); err != nil {
			return &ParseError{Path: EnvPrefix + name, Message: err.Error(), Err: err}
		}
	}
	return s.Validate()
}
