package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToYAML encodes the config as YAML with two-space indentation. A nil
// config encodes to nothing.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(c)
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// ToYAMLWithHeader encodes the config below a comment block, separated by
// one blank line.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	body, err := c.ToYAML()
	if err != nil || header == "" {
		return body, err
	}
	return append([]byte(strings.TrimRight(header, "\n")+"\n\n"), body...), nil
}

// FromYAML decodes a config. Blank input is an empty config; unknown keys
// are rejected.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	out := *c
	out.Extensions = slices.Clone(c.Extensions)
	out.Include = slices.Clone(c.Include)
	out.Exclude = slices.Clone(c.Exclude)
	if c.FollowSymlinks != nil {
		out.FollowSymlinks = Bool(*c.FollowSymlinks)
	}
	if b := c.Render.Backups.Enabled; b != nil {
		out.Render.Backups.Enabled = Bool(*b)
	}
	return &out
}
