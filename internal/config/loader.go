package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFrom decodes the YAML file at path over NewConfig, so keys missing
// from the file keep their defaults. Unknown keys are rejected.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &ConfigNotFoundError{Path: path}
	case errors.Is(err, fs.ErrPermission):
		return nil, &PermissionError{Path: path, Op: "read", Err: err}
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &InvalidConfigError{
			Path:   path,
			Err:    fmt.Errorf("YAML parse error: %w", err),
			Backup: backupPath(path),
		}
	}
	return cfg, nil
}

// backupPath returns the .bak file next to path, or "" if there is none.
func backupPath(path string) string {
	bak := path + ".bak"
	if _, err := os.Stat(bak); err != nil {
		return ""
	}
	return bak
}
