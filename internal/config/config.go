package config

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "fomapcheck"

	// DefaultReportFile is where unclassifiable objects are listed.
	// Relative paths are resolved against the working directory.
	DefaultReportFile = "invalid_objects.txt"

	// DefaultMapExtension is the extension of map files.
	DefaultMapExtension = ".fomap"

	// DefaultBackupSuffix is appended to a map path to name its backup.
	DefaultBackupSuffix = ".backup"
)

// Config holds all configuration options for a run.
// It is populated from CLI flags and the config file and passed through
// the application rather than kept in global state.
type Config struct {
	// ProtoDir is the prototype catalog root as given on the command line.
	// After ResolveDirs it holds the canonical resolved path.
	ProtoDir string

	// MapsDir is the map directory as given on the command line.
	// After ResolveDirs it holds the canonical resolved path.
	MapsDir string

	// MapExtension selects which files in MapsDir are maps.
	MapExtension string

	// Workers is the number of maps processed concurrently.
	Workers int

	// ReportFile is the path of the invalid-object report. It is always
	// written, even when empty.
	ReportFile string

	// DryRun reports corrections without writing them.
	DryRun bool

	// Backup copies each map to <map>.backup before its first write.
	Backup bool

	// FailFast stops the batch on the first failed map. By default failed
	// maps are reported and the remaining maps are still processed.
	FailFast bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONSummary prints the run summary as JSON.
	// Mutually exclusive with MarkdownSummary.
	JSONSummary bool

	// MarkdownSummary prints the run summary as Markdown.
	// Mutually exclusive with JSONSummary.
	MarkdownSummary bool

	// SummaryFile is the output file path for the summary.
	// When set, the formatted summary is written to this file and a text
	// summary is still printed to stdout.
	SummaryFile string

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/fomapcheck on Linux).
	DBDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .fomapcheck in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the loaded configuration file, if any.
	File *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MapExtension: DefaultMapExtension,
		Workers:      runtime.NumCPU(),
		ReportFile:   DefaultReportFile,
		SaveHistory:  true,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for fomapcheck.
// On Linux: ~/.local/share/fomapcheck
// On macOS: ~/Library/Application Support/fomapcheck
// On Windows: %LOCALAPPDATA%\fomapcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ApplyFile fills settings from the configuration file. Settings whose
// flag was set explicitly on the command line are kept; changed reports
// whether a flag was set.
func (c *Config) ApplyFile(f *File, changed func(flag string) bool) {
	if f == nil {
		return
	}
	c.File = f

	if f.Extension != "" && !changed("ext") {
		c.MapExtension = f.Extension
	}
	if f.Workers != 0 && !changed("workers") {
		c.Workers = f.Workers
	}
	if f.Report != "" && !changed("report") {
		c.ReportFile = f.Report
	}
	if f.Backup != nil && !changed("backup") {
		c.Backup = *f.Backup
	}
	if f.FailFast != nil && !changed("fail-fast") {
		c.FailFast = *f.FailFast
	}
	if f.History != nil && !changed("no-history") {
		c.SaveHistory = *f.History
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a package sentinel error.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.JSONSummary && c.MarkdownSummary {
		return ErrConflictingSummaryFormats
	}

	if strings.TrimSpace(c.ReportFile) == "" {
		return ErrEmptyReportFile
	}

	if !strings.HasPrefix(c.MapExtension, ".") || len(c.MapExtension) < 2 {
		return ErrInvalidExtension
	}

	return nil
}
