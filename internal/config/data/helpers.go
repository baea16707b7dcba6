// Package data reads and writes the per-store session files.
package data

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var invalidPathCharsRX = regexp.MustCompile(`[:/\\ ]+`)

// SanitizeFileName turns a store name into a single path component.
func SanitizeFileName(name string) string {
	return invalidPathCharsRX.ReplaceAllString(name, "-")
}

// EnsureDirPath creates path if needed and returns it.
func EnsureDirPath(path string, perm os.FileMode) (string, error) {
	if err := os.MkdirAll(path, perm); err != nil {
		return "", fmt.Errorf("failed to create directory %q: %w", path, err)
	}
	return path, nil
}

// SaveYAML writes v to path through a temp file so a crash never leaves a
// truncated session behind.
func SaveYAML(path string, v any) error {
	dir := filepath.Dir(path)
	if _, err := EnsureDirPath(dir, 0700); err != nil {
		return err
	}

	raw, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(raw); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// LoadYAML decodes the YAML file at path into v. A missing file yields an
// error matching os.ErrNotExist.
func LoadYAML(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal YAML from %q: %w", path, err)
	}

	return nil
}
