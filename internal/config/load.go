package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultFileName = "racetalk.yaml"

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
//
// A missing file falls back to defaults with a warning; a malformed or
// invalid file is an error so startup can fail before any session exists.
func Load(explicitPath string) (Loaded, error) {
	path := explicitPath
	if path == "" {
		path = defaultFileName
	}

	base := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && explicitPath == "" {
			warnings, verr := Validate(base)
			if verr != nil {
				return Loaded{}, verr
			}
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("config file %q not found; using defaults", path),
			})
			return Loaded{Path: path, Config: base, Warnings: warnings}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, warnings, err := Parse(content, base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	return Loaded{Path: path, Config: cfg, Warnings: warnings, Exists: true}, nil
}

// Parse decodes YAML content over the supplied base configuration.
func Parse(content []byte, base Config) (Config, []Warning, error) {
	cfg := base

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// A file holding only comments or whitespace decodes to nothing.
		if !errors.Is(err, io.EOF) {
			return Config{}, nil, err
		}
		cfg = base
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}
