// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file on the OS file system.
func Load[T any](filename string, target *T) error {
	return LoadFs(afero.NewOsFs(), filename, target)
}

// LoadFs loads configuration from a YAML file with environment variable
// expansion, then validates target if it implements Validator.
func LoadFs[T any](fsys afero.Fs, filename string, target *T) error {
	data, err := afero.ReadFile(fsys, filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return validate(target)
}

// LoadOptional behaves like LoadFs but keeps the values already in target
// when filename does not exist. They are still validated.
func LoadOptional[T any](fsys afero.Fs, filename string, target *T) error {
	err := LoadFs(fsys, filename, target)
	if errors.Is(err, fs.ErrNotExist) {
		return validate(target)
	}
	return err
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
