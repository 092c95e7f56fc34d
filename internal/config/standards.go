package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrStandardsParsing marks a standards file that exists but cannot be parsed.
var ErrStandardsParsing = errors.New("standards file parsing failed")

// standardsFile is the YAML layout of an external development-standards file.
type standardsFile struct {
	Standards []string `yaml:"standards"`
}

// resolveStandards returns the development standards to check during
// analysis. With no file configured, or a configured file that is absent,
// the built-in defaults apply; a present but malformed file is an error.
func resolveStandards(path string) ([]string, error) {
	if path == "" {
		return defaultStandards, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("standards file not found, using defaults", "path", path)
			return defaultStandards, nil
		}
		return nil, fmt.Errorf("failed to read standards file %s: %w", path, err)
	}

	var file standardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandardsParsing, err)
	}
	if len(file.Standards) == 0 {
		return defaultStandards, nil
	}
	return file.Standards, nil
}
