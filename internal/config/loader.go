package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML settings file at path. A missing file is not an
// error: every field falls back to [Default]. Unknown keys are ignored so
// a settings file can be shared with other tools.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s := Default()
		return &s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	s, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadFromReader decodes YAML settings from r.
// Useful in tests where settings are constructed from string literals.
func LoadFromReader(r io.Reader) (*Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read settings: %w", err)
	}
	s, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse settings: %w", err)
	}
	return s, nil
}

// parse decodes data on top of the defaults. Documents that are not a
// mapping (a bare scalar, a list, an empty file) are treated like an absent
// file; type errors inside a mapping propagate.
func parse(data []byte) (*Settings, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	s := Default()
	if root.Kind == 0 || len(root.Content) == 0 {
		return &s, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return &s, nil
	}
	if err := doc.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &s, nil
}
