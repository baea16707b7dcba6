package config

import (
	"os"
	"path/filepath"

	"github.com/dbrowse/dbrowse/internal/config/data"
)

const AppName = "dbrowse"

var (
	// AppConfigDir is ~/.config/dbrowse
	AppConfigDir string

	// AppDataDir is ~/.local/share/dbrowse
	AppDataDir string

	// AppStateDir is ~/.local/state/dbrowse
	AppStateDir string

	// AppConfigFile is ~/.config/dbrowse/dbrowse.yaml
	AppConfigFile string

	// AppStoresFile is ~/.config/dbrowse/stores.ini
	AppStoresFile string

	// AppStoresDir is ~/.local/share/dbrowse/stores
	AppStoresDir string

	// AppLogFile is ~/.local/state/dbrowse/dbrowse.log
	AppLogFile string
)

// InitLocs initializes all application directory paths.
// It respects XDG environment variables if set.
func InitLocs() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}

	AppConfigDir = filepath.Join(configHome, AppName)
	AppDataDir = filepath.Join(dataHome, AppName)
	AppStateDir = filepath.Join(stateHome, AppName)

	AppConfigFile = filepath.Join(AppConfigDir, AppName+".yaml")
	AppStoresFile = filepath.Join(AppConfigDir, "stores.ini")
	AppStoresDir = filepath.Join(AppDataDir, "stores")
	AppLogFile = filepath.Join(AppStateDir, AppName+".log")

	// Set default stores directory in data package to avoid circular import
	data.SetDefaultStoresDir(AppStoresDir)

	for _, dir := range []string{AppConfigDir, AppDataDir, AppStateDir, AppStoresDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	return nil
}

// InitLogLoc ensures the log directory exists
func InitLogLoc(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0700)
}
