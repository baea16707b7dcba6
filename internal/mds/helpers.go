package mds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome resolves a leading ~ in sqlite file paths.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Describe renders a one line description of a store for status bars.
func Describe(cfg *StoreConfig) string {
	if cfg == nil {
		return "<no store>"
	}
	name := cfg.Name
	if name == "" {
		name = "adhoc"
	}
	if cfg.Host == "" {
		return fmt.Sprintf("%s (%s %s)", name, cfg.Backend, cfg.Database)
	}
	return fmt.Sprintf("%s (%s %s@%s)", name, cfg.Backend, cfg.Database, cfg.Host)
}
