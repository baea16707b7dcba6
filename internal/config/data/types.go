// Package data provides configuration data types for the dbrowse application.
package data

// Flags represents CLI command-line flags for the dbrowse application.
type Flags struct {
	Num      *int    // Number of most recent runs to retrieve
	Store    *string // Store profile to use
	Backend  *string // Ad hoc store backend
	Database *string // Ad hoc store database
	Host     *string // Ad hoc store host or file
	LogLevel *string // Log level (e.g., debug, info, warn, error)
	LogFile  *string // Path to log file
	Headless *bool   // Run in headless mode (no TUI)
	Demo     *bool   // Use the in-memory demo store
	Select   *string // Run uid to select after the first retrieval
}

// UI represents user interface configuration settings.
type UI struct {
	EnableMouse bool `yaml:"enableMouse"`
	Crumbsless  bool `yaml:"crumbsless"`
	Menuless    bool `yaml:"menuless"`
}

// Logger represents logging configuration settings.
type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DefaultLogLevel is used when neither the config nor a flag sets one.
const DefaultLogLevel = "info"

// NewFlags creates a new Flags instance with all pointer fields initialized.
// All pointers are allocated but their values are not set.
func NewFlags() *Flags {
	return &Flags{
		Num:      new(int),
		Store:    new(string),
		Backend:  new(string),
		Database: new(string),
		Host:     new(string),
		LogLevel: new(string),
		LogFile:  new(string),
		Headless: new(bool),
		Demo:     new(bool),
		Select:   new(string),
	}
}
