package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the careplan home directory.
	DefaultDirName = ".careplan"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// VocabularyFileName is the optional vocabulary override file.
	VocabularyFileName = "vocabulary.yaml"
)

// Dir represents the careplan home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.careplan).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// VocabularyPath returns the path to the vocabulary override file.
func (d *Dir) VocabularyPath() string {
	return filepath.Join(d.path, VocabularyFileName)
}

// EnsureExists creates the home directory if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// VocabularyExists returns true if a vocabulary override file is present.
func (d *Dir) VocabularyExists() bool {
	_, err := os.Stat(d.VocabularyPath())
	return err == nil
}
